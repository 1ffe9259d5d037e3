// Package paramrenum rewrites $<digits> placeholder tokens by a fixed
// offset so independently-numbered SQL fragments (CTEs, subqueries,
// set-operation branches) can be spliced into one ascending $1..$n stream.
package paramrenum

import "strconv"

// Renumber scans sql for $<digits> tokens and rewrites each to
// $<digits+offset>. A bare "$" not followed by a digit, or any other
// malformed sequence, passes through unchanged. offset == 0 is a no-op
// short-circuit that returns sql unchanged without scanning.
func Renumber(sql string, offset int) string {
	if offset == 0 {
		return sql
	}

	var b []byte
	i := 0
	n := len(sql)
	for i < n {
		if sql[i] != '$' {
			if b != nil {
				b = append(b, sql[i])
			}
			i++
			continue
		}

		j := i + 1
		for j < n && sql[j] >= '0' && sql[j] <= '9' {
			j++
		}
		if j == i+1 {
			// '$' with no following digits: pass through unchanged.
			if b != nil {
				b = append(b, sql[i])
			}
			i++
			continue
		}

		if b == nil {
			b = make([]byte, 0, n+8)
			b = append(b, sql[:i]...)
		}
		num, err := strconv.Atoi(sql[i+1 : j])
		if err != nil {
			b = append(b, sql[i:j]...)
		} else {
			b = append(b, '$')
			b = strconv.AppendInt(b, int64(num+offset), 10)
		}
		i = j
	}

	if b == nil {
		return sql
	}
	return string(b)
}
