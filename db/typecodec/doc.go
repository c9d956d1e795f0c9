// Package typecodec serializes type expressions into a compact tagged byte
// stream and back.
//
// Every type starts with a one-byte tag. A named entity is written as
// BindingType, a zero alignment byte and the 4-byte record pointer of the
// entity's persisted record. Composite types write their own tag followed by
// their fields and nested types, depth first. An absent type is the single
// byte NullType.
//
// Entities live outside this package. A Resolver maps an entity to its record
// pointer when marshalling and back when unmarshalling, so the codec never
// needs to know what an entity is.
//
// Store persists one encoded type or value into a 6-byte slot of a database
// record, inline when it fits and through an allocated blob otherwise.
package typecodec
