package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nlcal/src-server/extractor"
	"nlcal/src-server/ical"
	"nlcal/src-server/model"

	"github.com/bwmarrin/discordgo"
	"github.com/olebedev/when"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppCmdHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

type AppState struct {
	Config   *Config
	BunDB    *bun.DB // nil when NLCAL_DATABASE is unset
	When     *when.Parser
	Compiler *ical.Compiler
	Oracle   extractor.Oracle

	DgSession *discordgo.Session

	startedAt time.Time

	mu sync.RWMutex
	// will be send to Discord
	appCmdInfo map[string]*discordgo.ApplicationCommand
	// handling commands from Discord WSAPI
	appCmdHandler map[string]AppCmdHandler
}

func NewAppState(ctx context.Context, config *Config) (*AppState, error) {
	as := &AppState{
		Config:        config,
		When:          NewWhenParser(),
		Compiler:      ical.NewCompiler(),
		startedAt:     time.Now(),
		appCmdInfo:    make(map[string]*discordgo.ApplicationCommand),
		appCmdHandler: make(map[string]AppCmdHandler),
	}

	switch config.GetOracle() {
	case OracleLocal:
		as.Oracle = NewLocalOracle(as.When)
	default:
		as.Oracle = NewNatural(config, &http.Client{})
	}
	slog.Debug("oracle selected", "oracle", config.GetOracle())

	if config.GetDatabase() != "" {
		db, err := OpenDatabase(ctx, config.GetDatabase())
		if err != nil {
			return nil, fmt.Errorf("NewAppState: %w", err)
		}
		as.BunDB = db
	}

	return as, nil
}

// OpenDatabase opens (creating if needed) the sqlite history database and
// makes sure the schema exists.
func OpenDatabase(ctx context.Context, path string) (*bun.DB, error) {
	rawDB, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("OpenDatabase: cannot open sqlite database: %w", err)
	}
	rawDB.SetMaxIdleConns(8)

	db := bun.NewDB(rawDB, sqlitedialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	if err := model.CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenDatabase: %w", err)
	}
	return db, nil
}

// OracleName is the label used for metrics and logs.
func (as *AppState) OracleName() string {
	return as.Config.GetOracle()
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startedAt)
}

func (as *AppState) AddAppCmdInfo(id string, info *discordgo.ApplicationCommand) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdInfo[id] = info
}

func (as *AppState) IterateAppCmdInfo(fn func(k string, v *discordgo.ApplicationCommand)) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	for k, v := range as.appCmdInfo {
		fn(k, v)
	}
}

func (as *AppState) AddAppCmdHandler(id string, handler AppCmdHandler) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdHandler[id] = handler
}

func (as *AppState) GetAppCmdHandler(id string) (AppCmdHandler, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	handler, ok := as.appCmdHandler[id]
	return handler, ok
}

// Close releases the database and the Discord session, whichever are open.
func (as *AppState) Close() {
	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
	if as.BunDB != nil {
		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	}
}
