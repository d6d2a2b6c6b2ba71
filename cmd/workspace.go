package cmd

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/config"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/versions"
)

// workspace bundles what most commands need: config, baseline and the
// variant directory on top of the configured store.
type workspace struct {
	cfg    config.Config
	data   content.Data
	store  versions.Store
	dir    *versions.Directory
	logger *zap.Logger
}

func openWorkspace() (ws *workspace, err error) {
	ws = &workspace{}

	ws.logger, err = newLogger()
	if err != nil {
		err = errors.Wrap(err, "failed to create logger")
		return nil, err
	}

	ws.cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return nil, err
	}

	ws.logger.Debug("loading baseline", zap.String("path", ws.cfg.BaselineLocation))
	ws.data, err = content.Load(ws.cfg.BaselineLocation)
	if err != nil {
		err = errors.Wrap(err, "failed to load baseline CV")
		return nil, err
	}

	ws.store, err = openStore(ws.cfg.Store, ws.logger)
	if err != nil {
		return nil, err
	}

	ws.dir = versions.NewDirectory(ws.store, versions.WithLogger(ws.logger))
	ws.logger.Debug("variant directory ready", zap.Int("variants", len(ws.dir.Variants())))

	return ws, err
}

func openStore(sc config.StoreConfig, logger *zap.Logger) (store versions.Store, err error) {
	switch sc.Driver {
	case config.DriverMemory:
		logger.Debug("using in-memory variant store")
		store = versions.NewMemoryStore()
		return store, err
	}

	logger.Debug("opening variant database", zap.String("path", sc.Path))

	var s *versions.SQLiteStore
	s, err = versions.OpenSQLite(sc.Path, versions.WithSQLiteLogger(logger))
	if err != nil {
		return store, err
	}

	if sc.Watch {
		err = s.Watch()
		if err != nil {
			_ = s.Close()
			err = errors.Wrap(err, "failed to watch variant database")
			return store, err
		}
	}

	store = s
	return store, err
}

func (ws *workspace) Close() {
	ws.dir.Close()
	err := ws.store.Close()
	if err != nil {
		ws.logger.Warn("failed to close variant store", zap.Error(err))
	}
	_ = ws.logger.Sync()
}

// findVariant resolves an id or an unambiguous id prefix.
func (ws *workspace) findVariant(ref string) (v versions.Variant, err error) {
	var matches []versions.Variant
	for _, candidate := range ws.dir.Variants() {
		if candidate.ID == ref {
			v = candidate
			return v, err
		}
		if strings.HasPrefix(candidate.ID, ref) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		err = &versions.NotFoundError{ID: ref}
	case 1:
		v = matches[0]
	default:
		err = errors.Errorf("variant id %q is ambiguous (%d matches)", ref, len(matches))
	}
	return v, err
}

func sanitizeFilename(name string) (sanitized string) {
	sanitized = strings.ToLower(name)

	sanitized = strings.Map(func(r rune) (result rune) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result = r
			return result
		}
		result = '-'
		return result
	}, sanitized)

	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}

	sanitized = strings.Trim(sanitized, "-")
	return sanitized
}
