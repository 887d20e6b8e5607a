// Package loader reads sightings documents from a file or a URL.
package loader

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/conf"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/httpclient"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

const component = "loader"

// Source provides a sightings document.
type Source interface {
	Load(ctx context.Context) (*sightings.Dataset, error)
}

// FileSource reads the document from a local file.
type FileSource struct {
	Path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load reads and decodes the file.
func (s *FileSource) Load(ctx context.Context) (*sightings.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryCancellation).
			Component(component).
			Build()
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		builder := errors.New(err).
			Category(errors.CategoryFileIO).
			Component(component).
			FileContext(s.Path, 0)
		if os.IsNotExist(err) {
			builder = builder.Context("hint", "run the scraper first")
		}
		return nil, builder.Build()
	}

	ds, err := sightings.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileParsing).
			Component(component).
			FileContext(s.Path, int64(len(data))).
			Build()
	}
	return ds, nil
}

// String describes the source for logs.
func (s *FileSource) String() string { return "file:" + s.Path }

// HTTPSource fetches the document from a URL. Decoded documents are cached
// for the configured TTL.
type HTTPSource struct {
	URL    string
	client *httpclient.Client
	cache  *cache.Cache
	log    logger.Logger
}

const cacheKey = "dataset"

// NewHTTPSource returns a source fetching url with client. A zero ttl
// disables caching.
func NewHTTPSource(url string, client *httpclient.Client, ttl time.Duration) *HTTPSource {
	if client == nil {
		client = httpclient.New(nil)
	}
	s := &HTTPSource{
		URL:    url,
		client: client,
		log:    logger.Global().Module(component),
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Load fetches and decodes the document, or returns the cached copy.
func (s *HTTPSource) Load(ctx context.Context) (*sightings.Dataset, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey); ok {
			if ds, ok := v.(*sightings.Dataset); ok {
				s.log.Debug("serving cached sightings document", logger.String("url", s.URL))
				return ds, nil
			}
		}
	}

	body, err := s.client.GetBody(ctx, s.URL, nil)
	if err != nil {
		// category is inherited from the client error
		return nil, errors.New(err).
			Component(component).
			Context("url", s.URL).
			Context("status_code", httpclient.StatusCode(err)).
			Build()
	}

	ds, err := sightings.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileParsing).
			Component(component).
			Context("url", s.URL).
			Build()
	}

	if s.cache != nil {
		s.cache.SetDefault(cacheKey, ds)
	}
	return ds, nil
}

// Invalidate drops the cached document.
func (s *HTTPSource) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(cacheKey)
	}
}

// String describes the source for logs.
func (s *HTTPSource) String() string { return "url:" + s.URL }

// Static serves an already decoded dataset.
type Static struct {
	Dataset *sightings.Dataset
}

// Load returns the dataset, or an error when it is nil.
func (s Static) Load(context.Context) (*sightings.Dataset, error) {
	if s.Dataset == nil {
		return nil, errors.Newf("no sightings document loaded").
			Category(errors.CategoryNotFound).
			Component(component).
			Build()
	}
	return s.Dataset, nil
}

// NewSource picks the source configured in cfg: the URL when set, the local
// path otherwise. client may be nil when no URL is configured.
func NewSource(cfg conf.DataSettings, client *httpclient.Client) Source {
	if cfg.URL != "" {
		if client == nil {
			client = httpclient.New(nil)
		}
		return NewHTTPSource(cfg.URL, client, cfg.CacheTTL)
	}
	return NewFileSource(cfg.Path)
}
