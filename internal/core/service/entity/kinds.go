package entity

import (
	"encoding/json"
	"fmt"
	"maps"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/reconcile"
	"restaurant-menu/internal/core/sequence"
	"slices"

	"github.com/google/uuid"
)

const (
	fieldThumbnail  = "thumbnail"
	fieldPictures   = "pictures"
	fieldVideos     = "videos"
	fieldLocation   = "location"
	fieldName       = "name"
	fieldNameSlug   = "nameSlug"
	fieldSlug       = "slug"
	fieldStatus     = "status"
	fieldProfile    = "profilePercentage"
	fieldRestaurant = "restaurant"
	fieldEmployee   = "employee"
	fieldIsActive   = "isActive"
	fieldIsDeleted  = "isDeleted"
)

const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirm   = "CONFIRM"
	EmployeeStatusJoined = "JOINED"
)

type definition struct {
	schema   reconcile.Schema
	prefix   string
	defaults domain.Document
	// generated keys a patch cannot overwrite
	generated []string
}

var media = reconcile.Schema{
	fieldThumbnail: reconcile.ObjectField(nil),
	fieldPictures:  reconcile.CollectionField(),
	fieldVideos:    reconcile.CollectionField(),
}

var definitions = map[domain.EntityKind]definition{
	domain.EntityKindRestaurant: {
		schema: with(media, reconcile.Schema{
			"mobile":      reconcile.ObjectField(nil),
			fieldLocation: reconcile.ObjectField(nil),
			"socials":     reconcile.CollectionField(),
		}),
		prefix: sequence.PrefixRestaurant,
		defaults: domain.Document{
			"tableCount":              2,
			"viewCount":               0,
			"serviceCharge":           0,
			"printerType":             "STAR",
			"printerCharacterSet":     "SLOVENIA",
			"printerLineCharacter":    "=",
			"removeSpecialCharacters": false,
			"isSubscribed":            false,
			"isAcceptPrePayment":      false,
			"isActive":                true,
			"isDeleted":               false,
		},
		generated: []string{fieldNameSlug, fieldSlug},
	},
	domain.EntityKindMenu: {
		schema: with(media, reconcile.Schema{
			"addOns": reconcile.CollectionField(),
		}),
		defaults: domain.Document{"isActive": true, "isDeleted": false},
	},
	domain.EntityKindCategory: {
		schema:   media,
		defaults: domain.Document{"isActive": true, "isDeleted": false},
	},
	domain.EntityKindOrder: {
		schema: reconcile.Schema{
			"items":       reconcile.CollectionField(),
			fieldLocation: reconcile.ObjectField(nil),
		},
		prefix: sequence.PrefixOrder,
		defaults: domain.Document{
			fieldStatus:     OrderStatusPending,
			"paymentStatus": "PENDING",
			"isActive":      true,
			"isDeleted":     false,
		},
	},
	domain.EntityKindEmployee: {
		defaults: domain.Document{"isActive": true, "isDeleted": false},
	},
}

// reserved keys are owned by the entity metadata and never read from a payload
var reserved = []string{
	"id", "_id",
	"createdAt", "createdBy", "updatedAt", "updatedBy",
	"cTime", "cBy", "uTime", "uBy",
	"timezone",
}

func lookup(kind domain.EntityKind) (definition, error) {
	def, ok := definitions[kind]
	if !ok {
		return definition{}, fmt.Errorf("%w: %s", domain.ErrUnknownKind, kind)
	}
	return def, nil
}

// Schema returns the reconciliation schema of kind
func Schema(kind domain.EntityKind) (reconcile.Schema, error) {
	def, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	return def.schema, nil
}

func with(base reconcile.Schema, extra reconcile.Schema) reconcile.Schema {
	schema := make(reconcile.Schema, len(base)+len(extra))
	maps.Copy(schema, base)
	maps.Copy(schema, extra)
	return schema
}

// sanitize returns a copy of payload without the keys a client may not set
func (d definition) sanitize(kind domain.EntityKind, payload domain.Document) domain.Document {
	clean := maps.Clone(payload)
	if clean == nil {
		clean = domain.Document{}
	}
	for _, key := range reserved {
		delete(clean, key)
	}
	for _, key := range d.generated {
		delete(clean, key)
	}
	if field := kind.CodeField(); field != "" {
		delete(clean, field)
	}
	return clean
}

// assignIdentities gives an identity to every collection item lacking one
func assignIdentities(schema reconcile.Schema, fields domain.Document) {
	for key, field := range schema {
		switch field.Kind {
		case reconcile.Collection:
			items, ok := fields[key].([]any)
			if !ok {
				continue
			}
			items = slices.Clone(items)
			for i, item := range items {
				doc, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if id, ok := doc[reconcile.IdentityKey]; ok && id != nil && id != "" {
					continue
				}
				doc = maps.Clone(doc)
				doc[reconcile.IdentityKey] = uuid.NewString()
				items[i] = doc
			}
			fields[key] = items
		case reconcile.Object:
			if nested, ok := fields[key].(map[string]any); ok && field.Nested != nil {
				nested = maps.Clone(nested)
				assignIdentities(field.Nested, nested)
				fields[key] = nested
			}
		}
	}
}

// normalizeLocation stores lat/lng as a GeoJSON point, longitude first
func normalizeLocation(fields domain.Document) {
	location, ok := fields[fieldLocation].(map[string]any)
	if !ok {
		return
	}
	lat, okLat := numberOf(location["lat"])
	lng, okLng := numberOf(location["lng"])
	if !okLat || !okLng {
		return
	}
	location = maps.Clone(location)
	location["type"] = "Point"
	location["coordinates"] = []any{lng, lat}
	fields[fieldLocation] = location
}

func numberOf(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
