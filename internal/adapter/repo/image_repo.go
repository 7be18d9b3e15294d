package repo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/infra"
	"github.com/Shaharyar2310/silkif.y/internal/sqlinline"
)

// ImageRepositoryPG implements domain.ImageRepository backed by PostgreSQL.
type ImageRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewImageRepository(sql infra.SQLExecutor) *ImageRepositoryPG {
	return &ImageRepositoryPG{sql: sql}
}

// SaveImage inserts a history row; id and created_at come from the database.
func (r *ImageRepositoryPG) SaveImage(ctx context.Context, rec domain.NewImageRecord) (*domain.ImageRecord, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertImage,
		rec.UserID,
		rec.OriginalURL,
		rec.ProcessedURL,
		rec.ThumbnailURL,
		rec.Style,
		rec.AIPrompt,
		string(rec.ProcessingType),
		metadataArg(rec.Metadata),
	)
	return scanImage("save image", row)
}

func (r *ImageRepositoryPG) GetImage(ctx context.Context, id int64) (*domain.ImageRecord, error) {
	return scanImage("get image", r.sql.QueryRow(ctx, sqlinline.QSelectImageByID, id))
}

// GetUserImages lists a user's history newest first.
func (r *ImageRepositoryPG) GetUserImages(ctx context.Context, userID int64) ([]domain.ImageRecord, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectImagesByUser, userID)
	if err != nil {
		return nil, mapError("list images", err)
	}
	defer rows.Close()

	images := make([]domain.ImageRecord, 0)
	for rows.Next() {
		rec, err := scanImage("list images", rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list images", err)
	}
	return images, nil
}

func (r *ImageRepositoryPG) ClearUserImages(ctx context.Context, userID int64) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QDeleteImagesByUser, userID); err != nil {
		return mapError("clear images", err)
	}
	return nil
}

func scanImage(op string, row pgx.Row) (*domain.ImageRecord, error) {
	var rec domain.ImageRecord
	var processingType string
	var metadata []byte
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.OriginalURL, &rec.ProcessedURL, &rec.ThumbnailURL,
		&rec.Style, &rec.AIPrompt, &processingType, &metadata, &rec.CreatedAt); err != nil {
		return nil, mapError(op, err)
	}
	rec.ProcessingType = domain.ProcessingType(processingType)
	if len(metadata) > 0 {
		rec.Metadata = json.RawMessage(metadata)
	}
	return &rec, nil
}

func metadataArg(m json.RawMessage) any {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}

var _ domain.ImageRepository = (*ImageRepositoryPG)(nil)
