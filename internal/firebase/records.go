package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/acmutd/grades-api/internal/types"
	"google.golang.org/api/iterator"
)

// gradeRecordDoc is the stored form of a record. Row keeps the position the
// record had in the source table so reads can restore table order.
type gradeRecordDoc struct {
	types.GradeRecord
	Row        int       `firestore:"row"`
	ImportedAt time.Time `firestore:"imported_at"`
}

// collectionName normalizes a collection name the same way for reads and
// writes.
func collectionName(collection string) (string, error) {
	name := sanitizeDocID(collection)
	if name == "" {
		return "", fmt.Errorf("collection name is required")
	}
	return name, nil
}

/*
Structure:

  - {collection}/{row} with year, semester, course, grade, count, row

    Document IDs are the zero-padded row index. A re-import overwrites rows
    0..len(records)-1 in place and deletes every row past the new length,
    so the collection always holds exactly the last imported table.
*/
func (c *Firestore) ReplaceGradeRecords(ctx context.Context, collection string, records []types.GradeRecord) error {
	name, err := collectionName(collection)
	if err != nil {
		return err
	}

	writer := c.BulkWriter(ctx)
	now := time.Now()
	coll := c.Collection(name)

	jobs := make([]*firestore.BulkWriterJob, 0, len(records))
	for i, record := range records {
		doc := coll.Doc(fmt.Sprintf("%08d", i))
		job, err := writer.Set(doc, gradeRecordDoc{GradeRecord: record, Row: i, ImportedAt: now})
		if err != nil {
			writer.End()
			return fmt.Errorf("failed to queue record %d: %w", i, err)
		}
		jobs = append(jobs, job)
	}

	stale := coll.Where("row", ">=", len(records)).Documents(ctx)
	defer stale.Stop()
	for {
		doc, err := stale.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			writer.End()
			return fmt.Errorf("failed to list stale grade records: %w", err)
		}
		job, err := writer.Delete(doc.Ref)
		if err != nil {
			writer.End()
			return fmt.Errorf("failed to queue delete of %s: %w", doc.Ref.ID, err)
		}
		jobs = append(jobs, job)
	}

	writer.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to write grade record batch item %d: %w", i, err)
		}
	}

	return nil
}

// LoadGradeRecords reads every record of collection in table order.
func (c *Firestore) LoadGradeRecords(ctx context.Context, collection string) ([]types.GradeRecord, error) {
	name, err := collectionName(collection)
	if err != nil {
		return nil, err
	}

	iter := c.Collection(name).OrderBy("row", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	records := []types.GradeRecord{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get next grade record: %w", err)
		}

		var stored gradeRecordDoc
		if err := doc.DataTo(&stored); err != nil {
			return nil, fmt.Errorf("failed to decode grade record %s: %w", doc.Ref.ID, err)
		}
		records = append(records, stored.GradeRecord)
	}

	return records, nil
}
