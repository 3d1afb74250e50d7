package memdb

import (
	"fmt"
	"strings"

	hcmemdb "github.com/hashicorp/go-memdb"
)

// PK is a mandatory index for all tables at hc/go-memdb
const PK = "id"

type (
	// UnixTime used as timestamp at sync records
	UnixTime = int64

	// TableSchema synonym for replacing original type at code
	TableSchema = hcmemdb.TableSchema
)

type (
	dataType  = string
	fieldName = string
	indexName = string
)

type Relation struct {
	OriginalDataTypeFieldName fieldName
	RelatedDataType           dataType
	// Only PK for MandatoryForeignKeys, any string index for child relations
	RelatedDataTypeFieldIndexName indexName
}

type DBSchema struct {
	Tables map[string]*TableSchema
	// check at Insert
	// prohibited to use the same dataType as map key and as value in Relation.RelatedDataType
	MandatoryForeignKeys map[dataType][]Relation
	// use at CascadeDelete
	// check at Delete, deleting fails if any of relation is not empty
	CascadeDeletes map[dataType][]Relation
	// check at CascadeDelete and Delete, deleting fails if any of relation is not empty
	// prohibited to place the same Relation into CascadeDeletes and CheckingRelations
	CheckingRelations map[dataType][]Relation
	// check at Insert, named indexes should not contain other active records
	UniqueConstraints map[dataType][]indexName
}

func (s *DBSchema) Validate() error {
	if err := (&hcmemdb.DBSchema{Tables: s.Tables}).Validate(); err != nil {
		return fmt.Errorf("%w:%s", ErrInvalidSchema, err)
	}
	if err := s.validateExistenceIndexes(); err != nil {
		return fmt.Errorf("%w:%s", ErrInvalidSchema, err)
	}
	if err := validateForeignKeys(s.MandatoryForeignKeys); err != nil {
		return fmt.Errorf("%w:%s", ErrInvalidSchema, err)
	}
	allChildRelations, err := s.validateUniquenessChildRelations()
	if err != nil {
		return fmt.Errorf("%w:%s", ErrInvalidSchema, err)
	}
	for dt := range allChildRelations {
		if err = validateCyclic(dt, allChildRelations); err != nil {
			return fmt.Errorf("%w:%s", ErrInvalidSchema, err)
		}
	}
	return nil
}

// validateForeignKeys checks:
// 1) absence of cyclic dependencies
// 2) only 'id' as RelatedDataTypeFieldIndexName
func validateForeignKeys(fks map[dataType][]Relation) error {
	rels := map[dataType]map[Relation]struct{}{}
	for d, keys := range fks {
		ks, ok := rels[d]
		if !ok {
			ks = map[Relation]struct{}{}
		}
		for _, key := range keys {
			if key.RelatedDataTypeFieldIndexName != PK {
				return fmt.Errorf("invalid RelatedDataTypeFieldIndexName:%s in FK:%#v of table %s",
					key.RelatedDataTypeFieldIndexName, key, d)
			}
			ks[key] = struct{}{}
		}
		rels[d] = ks
	}
	for d := range rels {
		if err := validateCyclic(d, rels); err != nil {
			return fmt.Errorf("cyclic dependency: %s", err.Error())
		}
	}
	return nil
}

// validateCyclic checks absence of cyclic dependencies between tables
func validateCyclic(topDataType dataType, rels map[dataType]map[Relation]struct{}) error {
	childDataTypesFunc := func(parentDataType dataType) []dataType {
		mapResult := map[dataType]struct{}{}
		for r := range rels[parentDataType] {
			// allow self-links
			if r.RelatedDataType != parentDataType {
				mapResult[r.RelatedDataType] = struct{}{}
			}
		}
		result := make([]dataType, 0, len(mapResult))
		for r := range mapResult {
			result = append(result, r)
		}
		return result
	}

	var walk func(cur dataType, chain []dataType) error
	walk = func(cur dataType, chain []dataType) error {
		for _, child := range childDataTypesFunc(cur) {
			if child == topDataType {
				return fmt.Errorf("dependencies chain:%s=>%s", strings.Join(append(chain, cur), "=>"), topDataType)
			}
			if err := walk(child, append(chain, cur)); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(topDataType, nil)
}

// validateExistenceIndexes checks that every relation points at an existing
// string-compatible index
func (s *DBSchema) validateExistenceIndexes() error {
	checkRelations := func(mapRels map[dataType][]Relation) error {
		for dt, rs := range mapRels {
			for _, r := range rs {
				ts, ok := s.Tables[r.RelatedDataType]
				if !ok {
					return fmt.Errorf("table %q is absent in DBSchema, passed as relation of table %q", r.RelatedDataType, dt)
				}
				index, ok := ts.Indexes[r.RelatedDataTypeFieldIndexName]
				if !ok {
					return fmt.Errorf("index named %q not found at table %q, passed as relation to field %q of table %q",
						r.RelatedDataTypeFieldIndexName, r.RelatedDataType, r.OriginalDataTypeFieldName, dt)
				}
				switch index.Indexer.(type) {
				case *hcmemdb.StringFieldIndex, *hcmemdb.UUIDFieldIndex:
				default:
					return fmt.Errorf("index named %q at table %q, passed as relation to field %q of table "+
						"%q has inappropriate type (allowed: StringFieldIndex, UUIDFieldIndex)",
						r.RelatedDataTypeFieldIndexName, r.RelatedDataType, r.OriginalDataTypeFieldName, dt)
				}
			}
		}
		return nil
	}
	for _, rs := range []map[dataType][]Relation{s.MandatoryForeignKeys, s.CascadeDeletes, s.CheckingRelations} {
		if err := checkRelations(rs); err != nil {
			return err
		}
	}
	return nil
}

// validateUniquenessChildRelations checks uniqueness for CascadeDeletes and CheckingRelations
// returns united map of relations
func (s *DBSchema) validateUniquenessChildRelations() (map[dataType]map[Relation]struct{}, error) {
	allRels := map[dataType]map[Relation]struct{}{}
	for _, rsMap := range []map[dataType][]Relation{s.CascadeDeletes, s.CheckingRelations} {
		for d, rs := range rsMap {
			rels, ok := allRels[d]
			if !ok {
				rels = map[Relation]struct{}{}
				allRels[d] = rels
			}
			for _, r := range rs {
				if _, rep := rels[r]; rep {
					return nil, fmt.Errorf("relation %#v is repeated for %s dataType", r, d)
				}
				rels[r] = struct{}{}
			}
		}
	}
	return allRels, nil
}

func MergeDBSchemas(schemas ...*DBSchema) (*DBSchema, error) {
	tables := map[string]*hcmemdb.TableSchema{}

	for i := range schemas {
		for name, table := range schemas[i].Tables {
			if _, found := tables[name]; found {
				return nil, fmt.Errorf("%w:table %q already there", ErrMergeSchema, name)
			}
			tables[name] = table
		}
	}

	type mapRelations = map[dataType][]Relation

	mergeRelationsFunc := func(getRelationsFunc func(*DBSchema) mapRelations) mapRelations {
		allRels := mapRelations{}
		for _, schema := range schemas {
			for name, rels := range getRelationsFunc(schema) {
				if prevRels, found := allRels[name]; found {
					rels = append(prevRels, rels...)
				}
				allRels[name] = rels
			}
		}
		return allRels
	}

	uniqueConstraints := map[dataType][]indexName{}
	for _, schema := range schemas {
		for name, idxs := range schema.UniqueConstraints {
			uniqueConstraints[name] = append(uniqueConstraints[name], idxs...)
		}
	}

	result := DBSchema{
		Tables:               tables,
		MandatoryForeignKeys: mergeRelationsFunc(func(s *DBSchema) mapRelations { return s.MandatoryForeignKeys }),
		CascadeDeletes:       mergeRelationsFunc(func(s *DBSchema) mapRelations { return s.CascadeDeletes }),
		CheckingRelations:    mergeRelationsFunc(func(s *DBSchema) mapRelations { return s.CheckingRelations }),
		UniqueConstraints:    uniqueConstraints,
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w:%s", ErrMergeSchema, err.Error())
	}
	return &result, nil
}
