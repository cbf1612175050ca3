package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"

	"restaurant-menu/internal/core/domain"
)

// MergeObject merges an incoming partial document into the current one.
//
// An incoming value carrying an active tombstone clears the whole object.
// Otherwise every key of incoming is merged according to schema and keys
// absent from incoming are left untouched. Neither argument is modified.
func MergeObject(schema Schema, current, incoming domain.Document) (domain.Document, error) {
	return mergeObject("", schema, current, incoming)
}

// MergeArray merges incoming items into the current collection by identity.
//
// Items are processed in order. Items that are not objects, or carry no
// identity, are appended. An identified item replaces the element with the
// same identity, or removes it when tombstoned, and is appended when nothing
// matches. Tombstoned items never end up in the result. An empty incoming
// slice leaves current unchanged.
func MergeArray(current, incoming []any) ([]any, error) {
	return mergeArray("", current, incoming)
}

// Merge merges a partial document into a typed value through its JSON form
func Merge[T any](schema Schema, current T, incoming domain.Document) (T, error) {
	var merged T

	currentDoc, err := ToDocument(current)
	if err != nil {
		return merged, err
	}

	result, err := MergeObject(schema, currentDoc, incoming)
	if err != nil {
		return merged, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return merged, fmt.Errorf("failed to encode merged document: %w", err)
	}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return merged, fmt.Errorf("%w: merged document does not fit %T: %w", domain.ErrValidationMismatch, merged, err)
	}
	return merged, nil
}

// ToDocument converts any JSON encodable value to a Document
func ToDocument(value any) (domain.Document, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", value, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var doc domain.Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %T is not an object", domain.ErrValidationMismatch, value)
	}
	if doc == nil {
		doc = domain.Document{}
	}
	return doc, nil
}

// IsTombstoned reports whether doc carries an active removal instruction
func IsTombstoned(doc domain.Document) bool {
	deleted, ok := doc[TombstoneKey].(bool)
	return ok && deleted
}

func mergeObject(path string, schema Schema, current, incoming domain.Document) (domain.Document, error) {
	if IsTombstoned(incoming) {
		return domain.Document{}, nil
	}

	merged := make(domain.Document, len(current)+len(incoming))
	maps.Copy(merged, current)

	for _, key := range slices.Sorted(maps.Keys(incoming)) {
		value := incoming[key]
		fieldPath := joinPath(path, key)

		switch schema.Kind(key) {
		case Object:
			in, ok := asDocument(value)
			if !ok {
				merged[key] = value
				continue
			}
			cur, err := objectAt(fieldPath, merged[key])
			if err != nil {
				return nil, err
			}
			result, err := mergeObject(fieldPath, schema.nested(key), cur, in)
			if err != nil {
				return nil, err
			}
			merged[key] = result

		case Collection:
			items, ok := asSlice(value)
			if !ok || len(items) == 0 {
				merged[key] = value
				continue
			}
			cur, err := sliceAt(fieldPath, merged[key])
			if err != nil {
				return nil, err
			}
			result, err := mergeArray(fieldPath, cur, items)
			if err != nil {
				return nil, err
			}
			merged[key] = result

		default:
			if in, ok := asDocument(value); ok && IsTombstoned(in) {
				merged[key] = domain.Document{}
				continue
			}
			merged[key] = value
		}
	}

	return merged, nil
}

func mergeArray(path string, current, incoming []any) ([]any, error) {
	result := slices.Clone(current)
	if result == nil {
		result = []any{}
	}

	for i, item := range incoming {
		doc, ok := asDocument(item)
		if !ok {
			result = append(result, item)
			continue
		}

		id, hasID, err := identityOf(fmt.Sprintf("%s[%d]", path, i), doc)
		if err != nil {
			return nil, err
		}
		tombstoned := IsTombstoned(doc)

		if !hasID {
			if !tombstoned {
				result = append(result, doc)
			}
			continue
		}

		idx, err := indexOf(path, result, id)
		if err != nil {
			return nil, err
		}

		switch {
		case idx >= 0 && tombstoned:
			result = slices.Delete(result, idx, idx+1)
		case idx >= 0:
			result[idx] = doc
		case !tombstoned:
			result = append(result, doc)
		}
	}

	return result, nil
}

func indexOf(path string, items []any, id string) (int, error) {
	for i, item := range items {
		doc, ok := asDocument(item)
		if !ok {
			continue
		}
		existing, hasID, err := identityOf(fmt.Sprintf("%s[%d]", path, i), doc)
		if err != nil {
			return -1, err
		}
		if hasID && existing == id {
			return i, nil
		}
	}
	return -1, nil
}

// identityOf returns the identity of doc in a comparable form. Numbers and
// their string spelling compare equal.
func identityOf(path string, doc domain.Document) (string, bool, error) {
	value, ok := doc[IdentityKey]
	if !ok || value == nil {
		return "", false, nil
	}

	switch id := value.(type) {
	case string:
		return id, id != "", nil
	case json.Number:
		return id.String(), true, nil
	case int:
		return strconv.Itoa(id), true, nil
	case int32:
		return strconv.FormatInt(int64(id), 10), true, nil
	case int64:
		return strconv.FormatInt(id, 10), true, nil
	case uint64:
		return strconv.FormatUint(id, 10), true, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true, nil
	case fmt.Stringer:
		return id.String(), true, nil
	default:
		return "", false, fmt.Errorf("%w: %s.%s has unexpected type %T", domain.ErrValidationMismatch, path, IdentityKey, value)
	}
}

func objectAt(path string, value any) (domain.Document, error) {
	if value == nil {
		return domain.Document{}, nil
	}
	doc, ok := asDocument(value)
	if !ok {
		return nil, fmt.Errorf("%w: %s expected object, got %T", domain.ErrValidationMismatch, path, value)
	}
	return doc, nil
}

func sliceAt(path string, value any) ([]any, error) {
	if value == nil {
		return []any{}, nil
	}
	items, ok := asSlice(value)
	if !ok {
		return nil, fmt.Errorf("%w: %s expected array, got %T", domain.ErrValidationMismatch, path, value)
	}
	return items, nil
}

func asDocument(value any) (domain.Document, bool) {
	doc, ok := value.(map[string]any)
	return doc, ok && doc != nil
}

func asSlice(value any) ([]any, bool) {
	switch items := value.(type) {
	case []any:
		return items, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
