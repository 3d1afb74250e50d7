package memdb

import (
	"testing"

	hcmemdb "github.com/hashicorp/go-memdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutordesk/local-engine/uuid"
)

type parent struct {
	UUID       string
	Identifier string
}

func (p *parent) ObjType() string { return "parent" }
func (p *parent) ObjId() string   { return p.UUID }

type child struct {
	UUID       string
	ParentUUID string
}

func (c *child) ObjType() string { return "child" }
func (c *child) ObjId() string   { return c.UUID }

func testSchema() *DBSchema {
	return &DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			"parent": {
				Name: "parent",
				Indexes: map[string]*hcmemdb.IndexSchema{
					PK: {
						Name:    PK,
						Unique:  true,
						Indexer: &hcmemdb.UUIDFieldIndex{Field: "UUID"},
					},
					"identifier": {
						Name:    "identifier",
						Indexer: &hcmemdb.StringFieldIndex{Field: "Identifier"},
					},
				},
			},
			"child": {
				Name: "child",
				Indexes: map[string]*hcmemdb.IndexSchema{
					PK: {
						Name:    PK,
						Unique:  true,
						Indexer: &hcmemdb.UUIDFieldIndex{Field: "UUID"},
					},
					"parent_uuid": {
						Name:         "parent_uuid",
						AllowMissing: true,
						Indexer:      &hcmemdb.StringFieldIndex{Field: "ParentUUID"},
					},
				},
			},
		},
		MandatoryForeignKeys: map[string][]Relation{
			"child": {
				{OriginalDataTypeFieldName: "ParentUUID", RelatedDataType: "parent", RelatedDataTypeFieldIndexName: PK},
			},
		},
		CascadeDeletes: map[string][]Relation{
			"parent": {
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: "child", RelatedDataTypeFieldIndexName: "parent_uuid"},
			},
		},
		UniqueConstraints: map[string][]string{
			"parent": {"identifier"},
		},
	}
}

func testDB(t *testing.T) *MemDB {
	db, err := NewMemDB(testSchema())
	require.NoError(t, err)
	return db
}

func Test_InsertChecksForeignKeys(t *testing.T) {
	db := testDB(t)
	txn := db.Txn(true)
	defer txn.Abort()

	orphan := &child{UUID: uuid.New(), ParentUUID: uuid.New()}
	err := txn.Insert("child", orphan)
	assert.ErrorIs(t, err, ErrForeignKey)

	p := &parent{UUID: uuid.New(), Identifier: "one"}
	require.NoError(t, txn.Insert("parent", p))
	require.NoError(t, txn.Insert("child", &child{UUID: uuid.New(), ParentUUID: p.UUID}))
}

func Test_EmptyForeignKeyIsOptionalLink(t *testing.T) {
	db := testDB(t)
	txn := db.Txn(true)
	defer txn.Abort()

	err := txn.Insert("child", &child{UUID: uuid.New(), ParentUUID: ""})
	assert.NoError(t, err)
}

func Test_DeleteRefusesWhileChildrenExist(t *testing.T) {
	db := testDB(t)
	txn := db.Txn(true)
	defer txn.Abort()

	p := &parent{UUID: uuid.New(), Identifier: "one"}
	require.NoError(t, txn.Insert("parent", p))
	c := &child{UUID: uuid.New(), ParentUUID: p.UUID}
	require.NoError(t, txn.Insert("child", c))

	err := txn.Delete("parent", p)
	assert.ErrorIs(t, err, ErrNotEmptyRelation)

	require.NoError(t, txn.Delete("child", c))
	assert.NoError(t, txn.Delete("parent", p))
}

func Test_CascadeDeleteTakesChildren(t *testing.T) {
	db := testDB(t)
	txn := db.Txn(true)
	defer txn.Abort()

	p := &parent{UUID: uuid.New(), Identifier: "one"}
	require.NoError(t, txn.Insert("parent", p))
	for i := 0; i < 3; i++ {
		require.NoError(t, txn.Insert("child", &child{UUID: uuid.New(), ParentUUID: p.UUID}))
	}

	require.NoError(t, txn.CascadeDelete("parent", p))

	raw, err := txn.First("child", "parent_uuid", p.UUID)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func Test_UniqueConstraint(t *testing.T) {
	db := testDB(t)
	txn := db.Txn(true)
	defer txn.Abort()

	p := &parent{UUID: uuid.New(), Identifier: "one"}
	require.NoError(t, txn.Insert("parent", p))

	err := txn.Insert("parent", &parent{UUID: uuid.New(), Identifier: "one"})
	assert.ErrorIs(t, err, ErrUniqueConstraint)

	// replacing the same object is not a violation
	replaced := *p
	assert.NoError(t, txn.Insert("parent", &replaced))
}

func Test_InsertRequiresPointer(t *testing.T) {
	db := testDB(t)
	txn := db.Txn(true)
	defer txn.Abort()

	err := txn.Insert("child", child{UUID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotPtr)
}

func Test_ValidateRejectsCyclicCascade(t *testing.T) {
	schema := testSchema()
	schema.CascadeDeletes["child"] = []Relation{
		{OriginalDataTypeFieldName: "UUID", RelatedDataType: "parent", RelatedDataTypeFieldIndexName: "identifier"},
	}

	_, err := NewMemDB(schema)
	assert.Error(t, err)
}
