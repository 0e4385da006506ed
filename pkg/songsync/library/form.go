package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

// UpsertForm builds the ingest form: bucket, key, appKey and the tags
// flattened into bracket notation (tags[artist], tags[cover][data],
// tags[genre][0]).
func UpsertForm(appKey string, req songsync.LibraryRequest) (url.Values, error) {
	form := RemoveForm(appKey, req)
	if req.Tags == nil {
		return nil, fmt.Errorf("tags are required for %s/%s", req.Bucket, req.Key)
	}
	if err := encodeNested(form, "tags", req.Tags); err != nil {
		return nil, err
	}
	return form, nil
}

// RemoveForm builds the removal form: bucket, key and appKey.
func RemoveForm(appKey string, req songsync.LibraryRequest) url.Values {
	form := url.Values{}
	form.Set("bucket", req.Bucket)
	form.Set("key", req.Key)
	form.Set("appKey", appKey)
	return form
}

// encodeNested adds the JSON form of v to form under prefix.
func encodeNested(form url.Values, prefix string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", prefix, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return fmt.Errorf("encode %s: %w", prefix, err)
	}
	flatten(form, prefix, tree)
	return nil
}

// flatten writes scalars at their bracket path. Empty objects and arrays
// produce no fields; null becomes an empty value.
func flatten(form url.Values, prefix string, v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			flatten(form, prefix+"["+k+"]", child)
		}
	case []any:
		for i, child := range t {
			flatten(form, prefix+"["+strconv.Itoa(i)+"]", child)
		}
	case string:
		form.Set(prefix, t)
	case json.Number:
		form.Set(prefix, t.String())
	case bool:
		form.Set(prefix, strconv.FormatBool(t))
	case nil:
		form.Set(prefix, "")
	}
}
