package providers

import (
	"github.com/samber/do/v2"

	"github.com/mindleafapp/mindleaf/internal/config"
	"github.com/mindleafapp/mindleaf/internal/logger"
	"github.com/mindleafapp/mindleaf/internal/metadata"
)

// ProvideMetadataClient provides the Open Library lookup client.
func ProvideMetadataClient(i do.Injector) (*metadata.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return metadata.NewClient(cfg.Lookup.BaseURL, cfg.Lookup.CoverBaseURL, log.Logger), nil
}
