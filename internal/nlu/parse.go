package nlu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// parseInt accepts JSON integers, integral floats and numeric strings.
func parseInt(raw json.RawMessage) (int, error) {
	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	switch t := v.(type) {
	case json.Number:
		num = t
	case string:
		num = json.Number(strings.ReplaceAll(strings.TrimSpace(t), ",", ""))
	default:
		return 0, fmt.Errorf("not a number")
	}

	if n, err := strconv.Atoi(num.String()); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(num.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}

// stripCodeFence removes a surrounding markdown code fence, if any.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
