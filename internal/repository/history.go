package repository

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/guregu/dynamo"
	"github.com/pkg/errors"
)

// SearchRecord is the audit entry of one executed search.
type SearchRecord struct {
	SearchID       string    `dynamo:"search_id" json:"search_id"`
	Driver         string    `dynamo:"driver" json:"driver"`
	Query          string    `dynamo:"query" json:"query"`
	RowCount       int       `dynamo:"row_count" json:"row_count"`
	ElapsedSeconds float64   `dynamo:"elapsed_seconds" json:"elapsed_seconds"`
	SubmittedAt    time.Time `dynamo:"submitted_at" json:"submitted_at"`
	ExpiresAt      int64     `dynamo:"expires_at" json:"-"`
}

// HistoryRepository is interface of search history store
type HistoryRepository interface {
	PutSearch(record *SearchRecord) error
	GetSearch(searchID string) (*SearchRecord, error)
	ListSearches(limit int64) ([]*SearchRecord, error)
}

// historyTTL controls expires_at for DynamoDB TTL cleanup.
const historyTTL = 90 * 24 * time.Hour

// HistoryDynamoDB is implementation of HistoryRepository
type HistoryDynamoDB struct {
	table dynamo.Table
}

// NewHistoryDynamoDB is a constructor of HistoryDynamoDB as HistoryRepository
func NewHistoryDynamoDB(region, tableName string) HistoryRepository {
	db := dynamo.New(session.New(), &aws.Config{Region: aws.String(region)})
	return &HistoryDynamoDB{table: db.Table(tableName)}
}

// PutSearch stores the record with a TTL.
func (x *HistoryDynamoDB) PutSearch(record *SearchRecord) error {
	record.ExpiresAt = time.Now().UTC().Add(historyTTL).Unix()
	if err := x.table.Put(record).Run(); err != nil {
		return errors.Wrap(err, "Fail to put search record to DynamoDB")
	}
	return nil
}

// GetSearch returns nil without error when the record does not exist.
func (x *HistoryDynamoDB) GetSearch(searchID string) (*SearchRecord, error) {
	var record SearchRecord
	err := x.table.Get("search_id", searchID).One(&record)
	if err != nil {
		if err == dynamo.ErrNotFound || isResourceNotFoundErr(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "Fail to get search record from DynamoDB")
	}
	return &record, nil
}

// ListSearches scans up to limit records, unordered.
func (x *HistoryDynamoDB) ListSearches(limit int64) ([]*SearchRecord, error) {
	var records []*SearchRecord
	scan := x.table.Scan()
	if limit > 0 {
		scan = scan.SearchLimit(limit)
	}
	if err := scan.All(&records); err != nil {
		return nil, errors.Wrap(err, "Fail to scan search records in DynamoDB")
	}
	return records, nil
}
