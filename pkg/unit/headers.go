package unit

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/magiconair/properties"
	"github.com/modrunio/modrun/pkg/errors"
	"github.com/modrunio/modrun/pkg/model"
	"github.com/modrunio/modrun/pkg/store"
	"github.com/modrunio/modrun/pkg/unit/status"
	"go.uber.org/zap"
)

// headerCache holds resolved localized manifests per locale. A single
// advance of the archive's modification token invalidates every locale
// at once; the cache never tracks staleness per entry.
//
// All operations serialize on the cache's own mutex. Concurrent callers
// for different locales wait on each other; this path is not hot and
// correctness wins.
type headerCache struct {
	mu      sync.Mutex
	entries map[string]model.Manifest
	stamp   int64
}

func (c *headerCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.stamp = 0
}

// localizedHeaders resolves the manifest of the current revision for the
// requested locale, serving from cache while the archive's modification
// token has not advanced past the token recorded at compute time.
func (h *Handle) localizedHeaders(ctx context.Context, locale string) (model.Manifest, error) {
	c := &h.headers
	c.mu.Lock()
	defer c.mu.Unlock()

	modified := h.LastModified()
	if modified > c.stamp {
		if c.entries != nil {
			h.mtx.IncCacheInvalidation()
		}
		c.entries = nil
	} else if cached, ok := c.entries[locale]; ok {
		return cached, nil
	}

	// A recompute mutates the cache; a stale unit only serves what it
	// already has.
	if h.timeline.Stale() {
		return nil, status.ErrStaleUnit
	}
	cur, err := h.timeline.Current()
	if err != nil {
		return nil, err
	}
	h.mtx.IncCacheMiss()

	headers := cur.Manifest()
	if !needsLocalization(headers) {
		c.put(locale, headers, modified)
		return headers, nil
	}

	basename := headers[model.LocalizationHeader]
	if basename == "" {
		basename = model.DefaultLocalizationBasename
	}
	merged := properties.NewProperties()
	for _, name := range localeResourceNames(basename, locale) {
		p, err := h.loadProperties(ctx, cur.Content(), name+model.LocalizationResourceSuffix)
		if err != nil {
			return nil, err
		}
		if p != nil {
			merged.Merge(p)
		}
	}

	for k, v := range headers {
		if !strings.HasPrefix(v, model.LocalizationMarker) {
			continue
		}
		key := strings.TrimPrefix(v, model.LocalizationMarker)
		if resolved, ok := merged.Get(key); ok {
			headers[k] = resolved
		} else {
			headers[k] = key
		}
	}
	c.put(locale, headers, modified)
	return headers, nil
}

func (c *headerCache) put(locale string, m model.Manifest, stamp int64) {
	if c.entries == nil {
		c.entries = make(map[string]model.Manifest, 1)
	}
	c.entries[locale] = m
	c.stamp = stamp
}

// loadProperties reads one localization resource. Absent resources are
// skipped; unreadable or unparsable ones are logged and skipped too,
// since localization sits on a display path.
func (h *Handle) loadProperties(ctx context.Context, content store.Content, name string) (*properties.Properties, error) {
	if content == nil {
		return nil, nil
	}
	rc, err := content.Resource(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		h.l.Error("error opening localization resource", zap.String("resource", name), zap.Error(err))
		return nil, nil
	}
	defer rc.Close()
	buf, err := io.ReadAll(rc)
	if err != nil {
		h.l.Error("error reading localization resource", zap.String("resource", name), zap.Error(err))
		return nil, nil
	}
	p, err := properties.Load(buf, properties.UTF8)
	if err != nil {
		h.l.Error("error parsing localization resource", zap.String("resource", name), zap.Error(err))
		return nil, nil
	}
	return p, nil
}

func needsLocalization(m model.Manifest) bool {
	for _, v := range m {
		if strings.HasPrefix(v, model.LocalizationMarker) {
			return true
		}
	}
	return false
}

// localeResourceNames builds the most-general-first probe list for a
// base name and a locale split on "_":
//
//	{base, base_lang, base_lang_COUNTRY, base_lang_COUNTRY_variant}
func localeResourceNames(basename, locale string) []string {
	names := make([]string, 0, 4)
	names = append(names, basename)
	probe := basename
	for _, token := range strings.Split(locale, "_") {
		if token == "" {
			continue
		}
		probe += "_" + token
		names = append(names, probe)
	}
	return names
}
