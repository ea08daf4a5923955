package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository"
)

type documentStore struct {
	pool *pgxpool.Pool
}

// NewDocumentStore returns a Postgres-backed DocumentStore. All partitions
// share one documents table; the partition column plays the role of a
// collection name. FindMany orders by insertion (created_at, id) so
// partition-local ordering is stable.
func NewDocumentStore(pool *pgxpool.Pool) repository.DocumentStore {
	return &documentStore{pool: pool}
}

func (s *documentStore) Insert(ctx context.Context, partition string, doc *repository.Document) (string, error) {
	if doc == nil || partition == "" {
		return "", domain.ErrInvalidPayload
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.Partition = partition

	const query = `
	INSERT INTO documents (id, partition, user_id, payload)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at
	`
	payload := doc.Data
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	if err := s.pool.QueryRow(ctx, query, doc.ID, partition, doc.UserID, payload).
		Scan(&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (s *documentStore) FindMany(ctx context.Context, partition string, filter repository.Filter) ([]repository.Document, error) {
	query, args := buildSelect(partition, filter, false)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []repository.Document
	for rows.Next() {
		var doc repository.Document
		if err := rows.Scan(&doc.ID, &doc.Partition, &doc.UserID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *documentStore) GetOne(ctx context.Context, partition, id, userID string) (*repository.Document, error) {
	const query = `
	SELECT id, partition, user_id, payload, created_at, updated_at
	FROM documents
	WHERE partition = $1 AND id = $2 AND user_id = $3
	`
	var doc repository.Document
	if err := s.pool.QueryRow(ctx, query, partition, id, userID).
		Scan(&doc.ID, &doc.Partition, &doc.UserID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *documentStore) UpdateOne(ctx context.Context, partition, id, userID string, patch map[string]interface{}) (int64, error) {
	merged, err := json.Marshal(patch)
	if err != nil {
		return 0, err
	}
	const query = `
	UPDATE documents
	SET payload = payload || $4::jsonb,
		updated_at = NOW()
	WHERE partition = $1 AND id = $2 AND user_id = $3
	`
	tag, err := s.pool.Exec(ctx, query, partition, id, userID, merged)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *documentStore) DeleteOne(ctx context.Context, partition, id, userID string) (int64, error) {
	const query = `DELETE FROM documents WHERE partition = $1 AND id = $2 AND user_id = $3`
	tag, err := s.pool.Exec(ctx, query, partition, id, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *documentStore) Count(ctx context.Context, partition string, filter repository.Filter) (int64, error) {
	query, args := buildSelect(partition, filter, true)
	var count int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// buildSelect compiles a Filter into SQL. Payload predicates use the ->>
// text extractor, so every comparison is a string comparison, matching the
// wire format of dates and times.
func buildSelect(partition string, filter repository.Filter, countOnly bool) (string, []interface{}) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	if countOnly {
		sb.WriteString("SELECT COUNT(*) FROM documents WHERE partition = $1")
	} else {
		sb.WriteString("SELECT id, partition, user_id, payload, created_at, updated_at FROM documents WHERE partition = $1")
	}
	args = append(args, partition)

	add := func(clause string, value interface{}) {
		args = append(args, value)
		fmt.Fprintf(&sb, clause, len(args))
	}

	if filter.UserID != "" {
		add(" AND user_id = $%d", filter.UserID)
	}
	for _, field := range sortedKeys(filter.Eq) {
		args = append(args, filter.Eq[field])
		fmt.Fprintf(&sb, " AND payload->>'%s' = $%d", field, len(args))
	}
	for _, field := range sortedKeys(filter.Gte) {
		args = append(args, filter.Gte[field])
		fmt.Fprintf(&sb, " AND payload->>'%s' >= $%d", field, len(args))
	}
	for _, field := range sortedKeys(filter.Lte) {
		args = append(args, filter.Lte[field])
		fmt.Fprintf(&sb, " AND payload->>'%s' <= $%d", field, len(args))
	}

	if !countOnly {
		sb.WriteString(" ORDER BY created_at ASC, id ASC")
	}
	return sb.String(), args
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
