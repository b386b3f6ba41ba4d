package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercuryedi/mercury/internal/common"
	"github.com/mercuryedi/mercury/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func baseLayout() []model.ElementSpec {
	return []model.ElementSpec{
		{Position: 1, ElementID: "127", Type: model.ElementTypeAlphanumeric, Requirement: "M", MinimumLength: 1, MaximumLength: 30},
		{Position: 2, ElementID: "128", Type: model.ElementTypeAlphanumeric, Requirement: "O", MaximumLength: 30},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestGetSegmentLayout(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	t.Run("base layout round trips in position order", func(t *testing.T) {
		require.NoError(t, store.ImportElementDefs(ctx, "X", "004010", "REF", baseLayout(), false))

		layout, err := store.GetSegmentLayout(ctx, "REF", "X", "004010")
		require.NoError(t, err)
		require.Len(t, layout, 2)
		assert.Equal(t, 1, layout[0].Position)
		assert.Equal(t, "127", layout[0].ElementID)
		assert.True(t, layout[0].Mandatory())
		assert.Equal(t, 30, layout[1].MaximumLength)
	})

	t.Run("custom layout wins over base", func(t *testing.T) {
		custom := []model.ElementSpec{
			{Position: 1, ElementID: "127", Type: model.ElementTypeAlphanumeric, Requirement: "M", MaximumLength: 50},
		}
		require.NoError(t, store.ImportElementDefs(ctx, "X", "004010", "REF", custom, true))

		layout, err := store.GetSegmentLayout(ctx, "REF", "X", "004010")
		require.NoError(t, err)
		require.Len(t, layout, 1)
		assert.Equal(t, 50, layout[0].MaximumLength)
	})

	t.Run("missing segment wraps schema-not-found", func(t *testing.T) {
		_, err := store.GetSegmentLayout(ctx, "ZZZ", "X", "004010")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrSchemaNotFound)
	})

	t.Run("different namespace does not match", func(t *testing.T) {
		_, err := store.GetSegmentLayout(ctx, "REF", "E", "004010")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrSchemaNotFound)
	})
}

func TestGetDocumentSegmentOrder(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	usages := []model.SegmentUsage{
		{Position: 10, SegmentID: "BIG", Requirement: "M", MaximumUsage: 1},
		{Position: 20, SegmentID: "N1", Requirement: "O", MaximumUsage: 1, LoopID: "N1", MaximumLoopRepeat: 200},
		{Position: 30, SegmentID: "IT1", Requirement: "M", MaximumUsage: 1, LoopID: "IT1"},
	}
	require.NoError(t, store.ImportSegmentUsage(ctx, "X", "004010", "810", usages, false))

	t.Run("base ordering round trips", func(t *testing.T) {
		order, err := store.GetDocumentSegmentOrder(ctx, "810", "X", "004010")
		require.NoError(t, err)
		require.Len(t, order, 3)
		assert.Equal(t, []string{"BIG", "N1", "IT1"},
			[]string{order[0].SegmentID, order[1].SegmentID, order[2].SegmentID})
		assert.Equal(t, 200, order[1].MaximumLoopRepeat)
	})

	t.Run("custom ordering replaces the base entirely", func(t *testing.T) {
		customOrder := []model.SegmentUsage{
			{Position: 10, SegmentID: "BIG", Requirement: "M"},
			{Position: 20, SegmentID: "CUR", Requirement: "O"},
		}
		require.NoError(t, store.ImportSegmentUsage(ctx, "X", "004010", "810", customOrder, true))

		order, err := store.GetDocumentSegmentOrder(ctx, "810", "X", "004010")
		require.NoError(t, err)
		require.Len(t, order, 2)
		assert.Equal(t, "CUR", order[1].SegmentID)
	})

	t.Run("unknown transaction set fails", func(t *testing.T) {
		_, err := store.GetDocumentSegmentOrder(ctx, "856", "X", "004010")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrSchemaNotFound)
	})
}

func TestGetSegmentDescription(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, err := store.db.ExecContext(ctx, `
		INSERT INTO segment_descriptions (agency, version, segment_id, description)
		VALUES ('X', '004010', 'BIG', 'Beginning Segment for Invoice')`)
	require.NoError(t, err)

	t.Run("base description", func(t *testing.T) {
		desc, err := store.GetSegmentDescription(ctx, "BIG", "X", "004010")
		require.NoError(t, err)
		assert.Equal(t, "Beginning Segment for Invoice", desc)
	})

	t.Run("custom description wins", func(t *testing.T) {
		_, err := store.db.ExecContext(ctx, `
			INSERT INTO custom_segment_descriptions (agency, version, segment_id, description)
			VALUES ('X', '004010', 'BIG', 'Invoice Header (partner profile)')`)
		require.NoError(t, err)

		desc, err := store.GetSegmentDescription(ctx, "BIG", "X", "004010")
		require.NoError(t, err)
		assert.Equal(t, "Invoice Header (partner profile)", desc)
	})

	t.Run("missing description", func(t *testing.T) {
		_, err := store.GetSegmentDescription(ctx, "ZZZ", "X", "004010")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestImportElementDefsReplacesExisting(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.ImportElementDefs(ctx, "X", "004010", "DTM", baseLayout(), false))
	replacement := []model.ElementSpec{
		{Position: 1, ElementID: "374", Type: model.ElementTypeIdentifier, Requirement: "M", MaximumLength: 3},
		{Position: 2, ElementID: "373", Type: model.ElementTypeDate, MaximumLength: 8},
		{Position: 3, ElementID: "337", Type: model.ElementTypeTime, MaximumLength: 8},
	}
	require.NoError(t, store.ImportElementDefs(ctx, "X", "004010", "DTM", replacement, false))

	layout, err := store.GetSegmentLayout(ctx, "DTM", "X", "004010")
	require.NoError(t, err)
	require.Len(t, layout, 3)
	assert.Equal(t, "374", layout[0].ElementID)
	assert.Equal(t, model.ElementTypeDate, layout[1].Type)
}

func TestDocumentProfiles(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	profile := &model.DocumentProfile{
		InterchangeSender: "ACME",
		DocumentID:        "INV-1001",
		Standard:          "EDI/X12",
		Version:           "004010",
		TransactionSetID:  "810",
	}
	require.NoError(t, store.SaveDocumentProfile(ctx, profile))

	t.Run("round trip", func(t *testing.T) {
		got, err := store.GetDocumentProfile(ctx, "ACME", "INV-1001")
		require.NoError(t, err)
		assert.Equal(t, profile, got)
	})

	t.Run("save replaces", func(t *testing.T) {
		updated := *profile
		updated.TransactionSetID = "850"
		require.NoError(t, store.SaveDocumentProfile(ctx, &updated))

		got, err := store.GetDocumentProfile(ctx, "ACME", "INV-1001")
		require.NoError(t, err)
		assert.Equal(t, "850", got.TransactionSetID)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := store.GetDocumentProfile(ctx, "ACME", "MISSING")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("nil profile rejected", func(t *testing.T) {
		assert.Error(t, store.SaveDocumentProfile(ctx, nil))
	})
}

func TestRawDocuments(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	docID := "INV-1001" + RawTextSuffix
	require.NoError(t, store.SaveRawDocument(ctx, docID, "Invoice 6GYNT 2 dated August 27"))

	text, err := store.GetRawDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "Invoice 6GYNT 2 dated August 27", text)

	t.Run("encoded representation is stored separately", func(t *testing.T) {
		encodedID := "INV-1001" + RawEncodedSuffix
		require.NoError(t, store.SaveRawDocument(ctx, encodedID, "BIG*20240827*6GYNT 2~"))

		encoded, err := store.GetRawDocument(ctx, encodedID)
		require.NoError(t, err)
		assert.Equal(t, "BIG*20240827*6GYNT 2~", encoded)

		original, err := store.GetRawDocument(ctx, docID)
		require.NoError(t, err)
		assert.NotEqual(t, encoded, original)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := store.GetRawDocument(ctx, "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestDeduplicateSegmentOrder(t *testing.T) {
	usages := []model.SegmentUsage{
		{Position: 10, SegmentID: "N1"},
		{Position: 20, SegmentID: "IT1"},
		{Position: 30, SegmentID: "N1"},
		{Position: 40, SegmentID: "REF"},
	}

	out := DeduplicateSegmentOrder(usages)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"N1", "IT1", "REF"},
		[]string{out[0].SegmentID, out[1].SegmentID, out[2].SegmentID})
	assert.Equal(t, 10, out[0].Position)
}

func TestValidationHelpers(t *testing.T) {
	t.Run("nil context rejected", func(t *testing.T) {
		//nolint:staticcheck // deliberately passing nil
		assert.Error(t, validateContext(nil))
	})

	t.Run("canceled context rejected", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, validateContext(ctx))
	})

	t.Run("empty string rejected", func(t *testing.T) {
		assert.Error(t, validateString("", "field"))
		assert.NoError(t, validateString("ok", "field"))
	})
}
