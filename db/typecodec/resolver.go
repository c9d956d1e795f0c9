package typecodec

import "github.com/joshuapare/symdb/db"

// Entity is a persisted named entity (a class, typedef, enumerator, template
// parameter) owned by the surrounding index.
type Entity any

// Resolver connects entities to their database records.
type Resolver interface {
	// RecordOf returns the record of e, persisting or adapting it as needed.
	// db.Null means e cannot be stored.
	RecordOf(e Entity) (db.RecPtr, error)

	// EntityAt returns the entity whose record is at p.
	EntityAt(p db.RecPtr) (Entity, error)
}
