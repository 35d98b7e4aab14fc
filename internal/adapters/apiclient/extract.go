package apiclient

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/educonnect/educonnect-web/internal/domain/model"
)

// Expressions used to read fields whose location differs between API responses.
const (
	exprToken       = "token || access_token || data.token"
	exprRequiresVer = "requires_verification || data.requires_verification"
	exprUser        = "user || data.user"
	exprUserID      = "user.id || id || user_id || userId"
	exprPhone       = "phone_number || user.phone_number || phone || user.phone"
	exprProfile     = "user || data || @"
	exprList        = "data || @"

	exprListingID    = "id || uuid || slug"
	exprListingTitle = "title || name || join(' ', [first_name, last_name][?@ != null])"
	exprListingDesc  = "description || bio || summary"
	exprListingPrice = "price || hourly_rate || cost"
	exprListingImage = "image_url || image || avatar || photo"
)

// extractor evaluates precompiled JMESPath expressions.
type extractor struct {
	mu    sync.RWMutex
	cache map[string]jmespath.JMESPath
}

func newExtractor() *extractor {
	return &extractor{cache: make(map[string]jmespath.JMESPath)}
}

func (e *extractor) compiled(expr string) (jmespath.JMESPath, error) {
	e.mu.RLock()
	c, ok := e.cache[expr]
	e.mu.RUnlock()
	if ok {
		return c, nil
	}
	c, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	e.mu.Lock()
	e.cache[expr] = c
	e.mu.Unlock()
	return c, nil
}

// search evaluates expr against data; evaluation errors read as "absent".
func (e *extractor) search(expr string, data any) any {
	c, err := e.compiled(expr)
	if err != nil {
		return nil
	}
	v, err := c.Search(data)
	if err != nil {
		return nil
	}
	return v
}

func (e *extractor) str(expr string, data any) string {
	return scalarString(e.search(expr, data))
}

func (e *extractor) object(expr string, data any) (map[string]any, bool) {
	m, ok := e.search(expr, data).(map[string]any)
	return m, ok
}

func (e *extractor) truthy(expr string, data any) bool {
	switch v := e.search(expr, data).(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case float64:
		return v != 0
	default:
		return false
	}
}

// listing maps one catalogue item to a Listing.
func (e *extractor) listing(item map[string]any) model.Listing {
	return model.Listing{
		ID:          e.str(exprListingID, item),
		Title:       e.str(exprListingTitle, item),
		Description: e.str(exprListingDesc, item),
		Price:       e.str(exprListingPrice, item),
		ImageURL:    e.str(exprListingImage, item),
		Raw:         item,
	}
}

// listings normalizes a collection response that is either a bare array or {data: [...]}.
func (e *extractor) listings(body any) ([]model.Listing, error) {
	items, ok := e.search(exprList, body).([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected collection shape %T", body)
	}
	out := make([]model.Listing, 0, len(items))
	for _, it := range items {
		if m, isObj := it.(map[string]any); isObj {
			out = append(out, e.listing(m))
		}
	}
	return out, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
