package di

import "reflect"

// Key identifies a service contract.
type Key string

// String returns the key as a string.
func (k Key) String() string { return string(k) }

// KeyOf derives a key from T's type name, "*github.com/acme/db.Pool" for
// *db.Pool. It is a registration-time convenience; lookups never reflect.
func KeyOf[T any]() Key {
	return Key(typeName(reflect.TypeFor[T]()))
}

func typeName(t reflect.Type) string {
	switch {
	case t.Kind() == reflect.Pointer:
		return "*" + typeName(t.Elem())
	case t.Name() != "" && t.PkgPath() != "":
		return t.PkgPath() + "." + t.Name()
	default:
		return t.String()
	}
}

func keyStrings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
