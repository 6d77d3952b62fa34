package ddl

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Kinds lists every intent kind.
func Kinds() []Kind {
	return []Kind{
		KindCreateDatabase, KindDropDatabase, KindCreateTable, KindAddColumn,
		KindRenameTable, KindDropTable, KindTruncateTable, KindCopyTable, KindMoveTable,
	}
}

// ParseKind accepts "create_table", "create-table" or "CreateTable" style names.
func ParseKind(s string) (Kind, bool) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for _, k := range Kinds() {
		if strings.ReplaceAll(string(k), "_", "") == norm {
			return k, true
		}
	}
	return "", false
}

// Decode builds an intent from loosely typed request parameters.
// Strings are accepted for booleans and numbers. The intent is not validated.
func Decode(kind string, params map[string]any) (Intent, error) {
	k, ok := ParseKind(kind)
	if !ok {
		return nil, &core.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown intent %q", kind)}
	}

	var in Intent
	switch k {
	case KindCreateDatabase:
		in = &CreateDatabase{}
	case KindDropDatabase:
		in = &DropDatabase{}
	case KindCreateTable:
		in = &CreateTable{}
	case KindAddColumn:
		in = &AddColumn{}
	case KindRenameTable:
		in = &RenameTable{}
	case KindDropTable:
		in = &DropTable{}
	case KindTruncateTable:
		in = &TruncateTable{}
	case KindCopyTable:
		in = &CopyTable{}
	case KindMoveTable:
		in = &MoveTable{}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           in,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(params); err != nil {
		return nil, &core.ValidationError{Field: string(k), Reason: err.Error()}
	}
	return in, nil
}
