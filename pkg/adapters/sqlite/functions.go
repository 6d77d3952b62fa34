package sqlite

import (
	"database/sql/driver"
	"regexp"
	"sync"

	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"modernc.org/sqlite"
)

var patterns sync.Map // string -> *regexp.Regexp

// registerFunctions installs REGEXP, which SQLite parses but does not implement.
// "x REGEXP y" calls regexp(y, x).
func registerFunctions() {
	sqlite.MustRegisterDeterministicScalarFunction("regexp", 2, regexpFunc)
}

func regexpFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if args[0] == nil || args[1] == nil {
		return nil, nil
	}
	re, err := compilePattern(valueText(args[0]))
	if err != nil {
		return nil, err
	}
	if re.MatchString(valueText(args[1])) {
		return int64(1), nil
	}
	return int64(0), nil
}

func compilePattern(p string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(p); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, err
	}
	patterns.Store(p, re)
	return re, nil
}

func valueText(v driver.Value) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return adapter.TextOf(v)
	}
}
