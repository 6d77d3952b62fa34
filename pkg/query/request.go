package query

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// DecodeRequest builds a QueryRequest from loosely typed request parameters,
// such as decoded JSON or form values. Numbers given as strings are accepted,
// and operator and direction spellings are normalized. Limit defaults to
// defaultLimit when absent or not positive.
func DecodeRequest(params map[string]any, defaultLimit int) (core.QueryRequest, error) {
	var req core.QueryRequest
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		return req, err
	}
	if err := dec.Decode(params); err != nil {
		return req, &core.ValidationError{Field: "request", Reason: fmt.Sprint(err)}
	}

	for i := range req.Filters {
		req.Filters[i].Operator = core.ParseOperator(string(req.Filters[i].Operator))
	}
	if req.Sort != nil {
		if req.Sort.Column == "" {
			req.Sort = nil
		} else {
			req.Sort.Direction = core.ParseSortDirection(string(req.Sort.Direction))
		}
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if page, ok := params["page"]; ok && req.Offset == 0 {
		var p int
		if _, err := fmt.Sscan(fmt.Sprint(page), &p); err == nil {
			req.Offset = core.OffsetForPage(p, req.Limit)
		}
	}
	return req, req.Validate()
}
