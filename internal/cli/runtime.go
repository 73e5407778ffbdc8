package cli

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"dossier/internal/config"
	"dossier/internal/event"
	"dossier/internal/export"
	"dossier/internal/journal"
	"dossier/internal/logging"
	"dossier/internal/policy"
	"dossier/internal/session"
	"dossier/internal/stream"
	"dossier/internal/submit"
)

// runtime holds the collaborators shared by the streaming commands.
type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	manager *stream.Manager
	session *session.Session
	journal *journal.Journal
	pdf     *export.PDFClient
	reports *export.ReportClient
}

// newLogger builds the command logger.
func newLogger(cfg config.Config, mode displayMode) (*zap.Logger, error) {
	if mode.muteLogs {
		return zap.NewNop(), nil
	}
	return logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.File})
}

// newRuntime wires the session for a config.
func newRuntime(ctx context.Context, cfg config.Config, mode displayMode) (*runtime, error) {
	logger, err := newLogger(cfg, mode)
	if err != nil {
		return nil, err
	}
	decoder, err := event.NewDecoder()
	if err != nil {
		return nil, fmt.Errorf("build event decoder: %w", err)
	}
	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		pdf:     export.NewPDFClient(cfg.Server.BaseURL, 0, logger),
		reports: export.NewReportClient(cfg.Server.BaseURL, cfg.Server.Timeout),
	}
	var recorder session.Recorder
	if cfg.Journal.Path != "" {
		rt.journal, err = journal.Open(ctx, cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		recorder = rt.journal
	}
	rt.manager = stream.NewManager(
		stream.HTTPOpener{BaseURL: cfg.Server.BaseURL, Client: &http.Client{}},
		decoder,
		stream.Options{Logger: logger.Named("stream")},
	)
	rt.session = session.New(
		submit.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, logger.Named("submit")),
		rt.manager,
		session.Options{
			Logger:   logger.Named("session"),
			Recorder: recorder,
			Policy: policy.Options{
				CollapseDelay:          cfg.UI.CollapseDelay,
				BriefingsCollapseDelay: cfg.UI.BriefingsCollapseDelay,
			},
		},
	)
	return rt, nil
}

// Close releases the stream, the journal and flushes logs.
func (rt *runtime) Close() {
	if rt == nil {
		return
	}
	if rt.session != nil {
		rt.session.Close()
	}
	if rt.journal != nil {
		if err := rt.journal.Close(); err != nil {
			rt.logger.Warn("close journal", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}
