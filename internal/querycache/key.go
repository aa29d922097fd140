package querycache

import (
	"encoding/json"
	"fmt"
)

// Key addresses one cached resource: a resource kind plus the parameters that
// identify it, for example {"softwareById", [12, 3]}.
type Key struct {
	Kind   string
	Params []any
}

// NewKey builds a key from a kind and its identifying parameters.
func NewKey(kind string, params ...any) Key {
	return Key{Kind: kind, Params: params}
}

// String is the stable cache address of the key. Parameters are JSON encoded so
// that nil pointers and zero values stay distinct.
func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Kind
	}
	b, err := json.Marshal(k.Params)
	if err != nil {
		return k.Kind + ":" + fmt.Sprint(k.Params...)
	}
	return k.Kind + ":" + string(b)
}
