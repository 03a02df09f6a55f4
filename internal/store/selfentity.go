package store

import (
	"os"
	"path/filepath"
)

// SelfEntityRef is the optional bootstrap file naming the centered entity
// for the default spoke (spec §6 "self-entity.json").
type SelfEntityRef struct {
	SelfEntityID   string `json:"self_entity_id"`
	SelfEntityName string `json:"self_entity_name"`
}

// ReadSelfEntity reads <dir>/self-entity.json if present. Returns
// (nil, nil) if the file does not exist — it is optional.
func ReadSelfEntity(dir string) (*SelfEntityRef, error) {
	path := filepath.Join(dir, "self-entity.json")
	var ref SelfEntityRef
	if err := readJSON(path, &ref); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}
