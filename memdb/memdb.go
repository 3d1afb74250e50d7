package memdb

import (
	"fmt"
	"reflect"

	hcmemdb "github.com/hashicorp/go-memdb"
	multierror "github.com/hashicorp/go-multierror"
)

var (
	ErrForeignKey       = fmt.Errorf("foreign key error")
	ErrNotEmptyRelation = fmt.Errorf("not empty relation error")
	ErrInvalidSchema    = fmt.Errorf("invalid DBSchema")
	ErrMergeSchema      = fmt.Errorf("merging DBSchema")
	ErrNotPtr           = fmt.Errorf("not pointer passed")
	ErrUniqueConstraint = fmt.Errorf("fail unique constraint")
)

type MemDB struct {
	*hcmemdb.MemDB

	schema *DBSchema
}

type Txn struct {
	*hcmemdb.Txn

	schema *DBSchema
}

func NewMemDB(schema *DBSchema) (*MemDB, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	db, err := hcmemdb.NewMemDB(&hcmemdb.DBSchema{Tables: schema.Tables})
	if err != nil {
		return nil, err
	}
	return &MemDB{
		MemDB:  db,
		schema: schema,
	}, nil
}

func (m *MemDB) Txn(write bool) *Txn {
	mTxn := m.MemDB.Txn(write)
	if write {
		mTxn.TrackChanges()
	}
	return &Txn{Txn: mTxn, schema: m.schema}
}

// Insert provides Insert operation into memdb with checking
// MandatoryForeignKeys and UniqueConstraints; insertion is successful if all
// related records exist and the unique indexes hold no other record
func (t *Txn) Insert(table string, objPtr interface{}) error {
	if err := t.checkUniqueConstraints(table, objPtr); err != nil {
		return fmt.Errorf("insert %#v: %w", objPtr, err)
	}
	if err := t.checkForeignKeys(table, objPtr); err != nil {
		return fmt.Errorf("insert %#v: %w", objPtr, err)
	}
	return t.Txn.Insert(table, objPtr)
}

func (t *Txn) Delete(table string, objPtr interface{}) error {
	rels := append(t.schema.CascadeDeletes[table], t.schema.CheckingRelations[table]...) //nolint:gocritic
	if err := t.processRelations(rels, objPtr, t.checkRelationShouldBeEmpty, ErrNotEmptyRelation); err != nil {
		return fmt.Errorf("delete:%w", err)
	}
	if err := t.Txn.Delete(table, objPtr); err != nil {
		return fmt.Errorf("delete:%w", err)
	}
	return nil
}

// CascadeDelete deletes the object together with all records of
// CascadeDeletes relations, failing if any CheckingRelations is not empty
func (t *Txn) CascadeDelete(table string, objPtr interface{}) error {
	if err := t.processRelations(t.schema.CheckingRelations[table], objPtr,
		t.checkRelationShouldBeEmpty, ErrNotEmptyRelation); err != nil {
		return fmt.Errorf("cascadeDelete:%w", err)
	}
	if err := t.processRelations(t.schema.CascadeDeletes[table], objPtr,
		t.deleteChildren, ErrNotEmptyRelation); err != nil {
		return fmt.Errorf("cascadeDelete:%w", err)
	}
	if err := t.Txn.Delete(table, objPtr); err != nil {
		return fmt.Errorf("cascadeDelete:%w", err)
	}
	return nil
}

func (t *Txn) checkForeignKeys(table string, objPtr interface{}) error {
	keys := t.schema.MandatoryForeignKeys[table]
	return t.processRelations(keys, objPtr, t.checkForeignKey, ErrForeignKey)
}

func (t *Txn) checkForeignKey(checkedFieldValue interface{}, key Relation) error {
	if s, ok := checkedFieldValue.(string); ok && s == "" {
		// optional link, empty by agreement
		return nil
	}
	relatedRecord, err := t.First(key.RelatedDataType, key.RelatedDataTypeFieldIndexName, checkedFieldValue)
	if err != nil {
		return fmt.Errorf("getting related record:%w", err)
	}
	if relatedRecord == nil {
		return fmt.Errorf("FK violation: %q not found at table %q at index %q",
			checkedFieldValue, key.RelatedDataType, key.RelatedDataTypeFieldIndexName)
	}
	return nil
}

// processRelations implements the main loop of checking relations,
// for each relation from relations, relationHandler will be executed
func (t *Txn) processRelations(relations []Relation, objPtr interface{},
	relationHandler func(originObjectFieldValue interface{}, key Relation) error,
	relationHandlerError error) error {
	valueIface := reflect.ValueOf(objPtr)
	if valueIface.Type().Kind() != reflect.Ptr {
		return fmt.Errorf("%w: obj `%s`", ErrNotPtr, valueIface.Type())
	}
	var allErrs *multierror.Error
	for _, key := range relations {
		field := valueIface.Elem().FieldByName(key.OriginalDataTypeFieldName)
		if !field.IsValid() {
			return fmt.Errorf("obj `%s` does not have the field `%s`", valueIface.Type(), key.OriginalDataTypeFieldName)
		}
		if err := relationHandler(field.Interface(), key); err != nil {
			allErrs = multierror.Append(allErrs, err)
		}
	}
	if err := allErrs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w:%s", relationHandlerError, err.Error())
	}
	return nil
}

func (t *Txn) checkRelationShouldBeEmpty(checkedFieldValue interface{}, key Relation) error {
	relatedRecord, err := t.First(key.RelatedDataType, key.RelatedDataTypeFieldIndexName, checkedFieldValue)
	if err != nil {
		return fmt.Errorf("getting related record:%w", err)
	}
	if relatedRecord != nil {
		return fmt.Errorf("relation should be empty: %q found at table %q by index %q",
			checkedFieldValue, key.RelatedDataType, key.RelatedDataTypeFieldIndexName)
	}
	return nil
}

func (t *Txn) deleteChildren(parentObjectFieldValue interface{}, key Relation) error {
	for {
		relatedRecord, err := t.First(key.RelatedDataType, key.RelatedDataTypeFieldIndexName, parentObjectFieldValue)
		if err != nil {
			return fmt.Errorf("getting related record:%w", err)
		}
		if relatedRecord == nil {
			return nil
		}
		if err = t.CascadeDelete(key.RelatedDataType, relatedRecord); err != nil {
			return fmt.Errorf("deleting related record: at table %q by index %q, value %q: %w",
				key.RelatedDataType, key.RelatedDataTypeFieldIndexName, parentObjectFieldValue, err)
		}
	}
}

type storable interface {
	ObjType() string
	ObjId() string
}

// checkUniqueConstraints checks the configured unique indexes among other records
func (t *Txn) checkUniqueConstraints(table string, objPtr interface{}) error {
	objID := ""
	if s, isStorable := objPtr.(storable); isStorable {
		objID = s.ObjId()
	}
	for _, idxName := range t.schema.UniqueConstraints[table] {
		idx := t.schema.Tables[table].Indexes[idxName]
		vals, err := collectValsForIndexes(objPtr, idx.Indexer)
		if err != nil {
			return fmt.Errorf("collecting vals for index %s at table %s: %w", idx.Name, table, err)
		}
		if err = t.checkIdxIsEmpty(table, idx.Name, vals, objID); err != nil {
			return fmt.Errorf("checkUniqueConstraints: %w", err)
		}
	}
	return nil
}

func (t *Txn) checkIdxIsEmpty(table string, idxName string, vals []interface{}, savedObjID string) error {
	iter, err := t.Get(table, idxName, vals...)
	if err != nil {
		return fmt.Errorf("checkIdxIsEmpty, index: %q at table %q: %w", idxName, table, err)
	}
	for {
		raw := iter.Next()
		if raw == nil {
			return nil
		}
		if s, isStorable := raw.(storable); isStorable && s.ObjId() == savedObjID {
			// it is the replaced obj, skip
			continue
		}
		return fmt.Errorf("%w: %q at table %q", ErrUniqueConstraint, idxName, table)
	}
}

func collectValsForIndexes(objPtr interface{}, indexes ...hcmemdb.Indexer) ([]interface{}, error) {
	var vals []interface{}
	for _, idx := range indexes {
		singleFieldName := ""
		switch t := idx.(type) {
		case *hcmemdb.UUIDFieldIndex:
			singleFieldName = t.Field
		case *hcmemdb.StringFieldIndex:
			singleFieldName = t.Field
		case *hcmemdb.CompoundIndex:
			extraVals, err := collectValsForIndexes(objPtr, t.Indexes...)
			if err != nil {
				return nil, err
			}
			vals = append(vals, extraVals...)
		default:
			return nil, fmt.Errorf("index type %T is not supported for unique constraint", idx)
		}
		if singleFieldName != "" {
			valueIface := reflect.ValueOf(objPtr)
			vals = append(vals, valueIface.Elem().FieldByName(singleFieldName).Interface())
		}
	}
	return vals, nil
}
