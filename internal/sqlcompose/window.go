package sqlcompose

import (
	"fmt"
	"strings"

	"github.com/relaydata/corebridge/internal/identifier"
)

// WindowFunc enumerates the supported window functions.
type WindowFunc int

const (
	WinRowNumber WindowFunc = iota
	WinRank
	WinDenseRank
	WinNtile
	WinLag
	WinLead
	WinFirstValue
	WinLastValue
	WinSum
	WinAvg
	WinCount
	WinMin
	WinMax
)

// WindowExpr is a window-function projection item: FUNC(args) OVER
// (PARTITION BY ... ORDER BY ...) AS "alias".
type WindowExpr struct {
	Func        WindowFunc
	Column      string // LAG/LEAD/SUM/AVG/COUNT/MIN/MAX/FIRST_VALUE/LAST_VALUE
	N           int64  // NTILE bucket count, or LAG/LEAD offset
	PartitionBy []string
	OrderBy     []orderTerm
	Alias       string
}

func (w WindowExpr) render() (string, error) {
	call, err := w.call()
	if err != nil {
		return "", err
	}

	var over strings.Builder
	over.WriteString("OVER (")
	wrote := false
	if len(w.PartitionBy) > 0 {
		parts := make([]string, len(w.PartitionBy))
		for i, c := range w.PartitionBy {
			if err := identifier.Validate(c); err != nil {
				return "", err
			}
			parts[i] = identifier.Quote(c)
		}
		over.WriteString("PARTITION BY " + strings.Join(parts, ", "))
		wrote = true
	}
	if len(w.OrderBy) > 0 {
		if wrote {
			over.WriteString(" ")
		}
		parts := make([]string, len(w.OrderBy))
		for i, t := range w.OrderBy {
			if err := identifier.Validate(t.Column); err != nil {
				return "", err
			}
			parts[i] = fmt.Sprintf("%s %s", identifier.Quote(t.Column), t.Dir)
		}
		over.WriteString("ORDER BY " + strings.Join(parts, ", "))
	}
	over.WriteString(")")

	if w.Alias == "" {
		return call + " " + over.String(), nil
	}
	if err := identifier.Validate(w.Alias); err != nil {
		return "", err
	}
	return call + " " + over.String() + " AS " + identifier.Quote(w.Alias), nil
}

func (w WindowExpr) call() (string, error) {
	switch w.Func {
	case WinRowNumber:
		return "ROW_NUMBER()", nil
	case WinRank:
		return "RANK()", nil
	case WinDenseRank:
		return "DENSE_RANK()", nil
	case WinNtile:
		return fmt.Sprintf("NTILE(%d)", w.N), nil
	case WinLag:
		if err := identifier.Validate(w.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("LAG(%s, %d)", identifier.Quote(w.Column), w.N), nil
	case WinLead:
		if err := identifier.Validate(w.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("LEAD(%s, %d)", identifier.Quote(w.Column), w.N), nil
	case WinFirstValue:
		if err := identifier.Validate(w.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("FIRST_VALUE(%s)", identifier.Quote(w.Column)), nil
	case WinLastValue:
		if err := identifier.Validate(w.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("LAST_VALUE(%s)", identifier.Quote(w.Column)), nil
	case WinSum:
		if err := identifier.Validate(w.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("SUM(%s)", identifier.Quote(w.Column)), nil
	case WinAvg:
		if err := identifier.Validate(w.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("AVG(%s)", identifier.Quote(w.Column)), nil
	case WinCount:
		if err := identifier.Validate(w.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("COUNT(%s)", identifier.Quote(w.Column)), nil
	case WinMin:
		if err := identifier.Validate(w.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("MIN(%s)", identifier.Quote(w.Column)), nil
	case WinMax:
		if err := identifier.Validate(w.Column); err != nil {
			return "", err
		}
		return fmt.Sprintf("MAX(%s)", identifier.Quote(w.Column)), nil
	default:
		return "", fmt.Errorf("sqlcompose: unknown window function %d", w.Func)
	}
}
