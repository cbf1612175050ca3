package entity

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"restaurant-menu/internal/core/reconcile"

	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"
)

const (
	completedProfileRate = 50
	thumbnailProfileRate = 75
)

// Update applies a partial update to a stored entity.
//
// Files are uploaded first and their references reconciled into the media
// fields, then the patch is reconciled into the stored fields. A top-level
// isDeleted is a soft-delete flag, not a tombstone. The entity is persisted
// once, after every step succeeded.
// Concurrent updates of the same entity are not serialized: the last save wins.
func (s *entityService) Update(ctx context.Context, req port.UpdateRequest) (*domain.Entity, error) {
	def, err := lookup(req.Kind)
	if err != nil {
		return nil, err
	}

	if err := checkPatch(req.Kind, req.Patch); err != nil {
		return nil, err
	}

	entity, err := s.repo.FindByID(ctx, req.Kind, req.ID)
	if err != nil {
		return nil, err
	}
	if err := checkUpdate(req.Kind, entity.Fields, req.Patch); err != nil {
		return nil, err
	}

	patch := def.sanitize(req.Kind, req.Patch)
	fields := maps.Clone(entity.Fields)
	if fields == nil {
		fields = domain.Document{}
	}

	fields, err = s.reconcileFiles(ctx, def.schema, fields, req.Files, req.Provider)
	if err != nil {
		s.mergeFailed(req.Kind, err)
		return nil, err
	}

	deleted, softDelete := patch[fieldIsDeleted]
	delete(patch, fieldIsDeleted)
	fields, err = reconcile.MergeObject(def.schema, fields, patch)
	if err != nil {
		s.mergeFailed(req.Kind, err)
		return nil, fmt.Errorf("failed to merge %s %s: %w", req.Kind, req.ID, err)
	}
	if softDelete {
		fields[fieldIsDeleted] = deleted
		patch[fieldIsDeleted] = deleted
	}

	s.prepareUpdate(req, entity.Fields, fields, patch)
	assignIdentities(def.schema, fields)

	entity.Fields = fields
	entity.UpdatedAt = s.stamp(req.Timezone)
	entity.UpdatedBy = req.Actor

	if err := s.repo.Save(ctx, *entity); err != nil {
		return nil, fmt.Errorf("failed to save %s %s: %w", req.Kind, req.ID, err)
	}

	s.logger.Info("entity updated", "kind", entity.Kind, "id", entity.ID)

	s.publish(ctx, *entity, domain.EventTypeUpdated, "")
	if req.Kind == domain.EntityKindOrder && fields[fieldStatus] == OrderStatusConfirm {
		s.publish(ctx, *entity, domain.EventTypeConfirmed, "admin")
	}

	return entity, nil
}

// reconcileFiles uploads the attached files concurrently and merges their
// references into the matching media fields
func (s *entityService) reconcileFiles(ctx context.Context, schema reconcile.Schema, fields domain.Document, files port.UpdateFiles, provider domain.Provider) (domain.Document, error) {
	if files.Empty() {
		return fields, nil
	}
	if err := accepts(schema, files); err != nil {
		return nil, err
	}

	var (
		thumbnail        domain.Document
		pictures, videos []any
	)

	g, gctx := errgroup.WithContext(ctx)
	if files.Thumbnail != nil {
		g.Go(func() error {
			descriptor, err := s.router.Upload(gctx, *files.Thumbnail, provider)
			if err != nil {
				return err
			}
			thumbnail = mediaRef(descriptor, *files.Thumbnail, "").Document()
			return nil
		})
	}
	if len(files.Pictures) > 0 {
		g.Go(func() error {
			refs, err := s.uploadBatch(gctx, files.Pictures, provider, "")
			pictures = refs
			return err
		})
	}
	if len(files.Videos) > 0 {
		g.Go(func() error {
			refs, err := s.uploadBatch(gctx, files.Videos, provider, domain.MediaKindVideo)
			videos = refs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	media := domain.Document{}
	if thumbnail != nil {
		media[fieldThumbnail] = thumbnail
	}
	if len(pictures) > 0 {
		media[fieldPictures] = pictures
	}
	if len(videos) > 0 {
		media[fieldVideos] = videos
	}

	merged, err := reconcile.MergeObject(schema, fields, media)
	if err != nil {
		return nil, fmt.Errorf("failed to merge uploaded files: %w", err)
	}
	return merged, nil
}

func (s *entityService) uploadBatch(ctx context.Context, batch []domain.UploadFile, provider domain.Provider, kind domain.MediaKind) ([]any, error) {
	descriptors, err := s.router.UploadMany(ctx, batch, provider)
	if err != nil {
		return nil, err
	}
	refs := make([]any, len(descriptors))
	for i, descriptor := range descriptors {
		refs[i] = mediaRef(descriptor, batch[i], kind).Document()
	}
	return refs, nil
}

// accepts checks that every attached file targets a declared media field
func accepts(schema reconcile.Schema, files port.UpdateFiles) error {
	if files.Thumbnail != nil && schema.Kind(fieldThumbnail) != reconcile.Object {
		return fmt.Errorf("%w: %s is not a media field", domain.ErrValidationMismatch, fieldThumbnail)
	}
	if len(files.Pictures) > 0 && schema.Kind(fieldPictures) != reconcile.Collection {
		return fmt.Errorf("%w: %s is not a media field", domain.ErrValidationMismatch, fieldPictures)
	}
	if len(files.Videos) > 0 && schema.Kind(fieldVideos) != reconcile.Collection {
		return fmt.Errorf("%w: %s is not a media field", domain.ErrValidationMismatch, fieldVideos)
	}
	return nil
}

func (s *entityService) mergeFailed(kind domain.EntityKind, err error) {
	if s.metrics != nil && errors.Is(err, domain.ErrValidationMismatch) {
		s.metrics.IncMergeFailure(kind)
	}
}

func mediaRef(descriptor domain.StorageDescriptor, file domain.UploadFile, kind domain.MediaKind) domain.MediaRef {
	if kind == "" {
		kind = domain.MediaKindFromMime(file.MimeType)
	}
	return domain.MediaRef{
		URI:      descriptor.Location,
		MimeType: file.MimeType,
		Kind:     kind,
	}
}

func (s *entityService) prepareUpdate(req port.UpdateRequest, before, fields, patch domain.Document) {
	switch req.Kind {
	case domain.EntityKindRestaurant:
		if req.Files.Thumbnail != nil {
			if rate, ok := numberOf(before[fieldProfile]); ok && rate == completedProfileRate {
				fields[fieldProfile] = thumbnailProfileRate
			}
		}
		if name, ok := patch[fieldName].(string); ok && name != "" {
			fields[fieldNameSlug] = slug.Make(name)
		}
		if _, ok := patch[fieldLocation]; ok {
			normalizeLocation(fields)
		}
	case domain.EntityKindOrder:
		if _, ok := patch[fieldLocation]; ok {
			normalizeLocation(fields)
		}
	case domain.EntityKindEmployee:
		if patch[fieldIsDeleted] == true {
			fields[fieldIsActive] = false
		}
		if patch[fieldStatus] == EmployeeStatusJoined {
			fields[fieldIsActive] = true
		}
	}
}

// checkPatch rejects patches rewriting the links of an employee
func checkPatch(kind domain.EntityKind, patch domain.Document) error {
	if kind != domain.EntityKindEmployee {
		return nil
	}
	for _, key := range []string{fieldEmployee, fieldRestaurant} {
		if _, ok := patch[key]; ok {
			return fmt.Errorf("%w: %s can't be changed", domain.ErrNotAcceptable, key)
		}
	}
	return nil
}

// checkUpdate rejects the soft delete of a restaurant owner or admin
func checkUpdate(kind domain.EntityKind, stored, patch domain.Document) error {
	if kind != domain.EntityKindEmployee || patch[fieldIsDeleted] != true {
		return nil
	}
	if stored["isOwner"] == true || stored["isAdmin"] == true {
		return fmt.Errorf("%w: admin or owner can't be deleted", domain.ErrNotAcceptable)
	}
	return nil
}
