// Package bulk streams entity collections into the target store through the
// COPY text path.
package bulk

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/Rana718/telseed/internal/store"
)

var (
	ErrUnsafeValue      = errors.New("value cannot be encoded safely")
	ErrUnsupportedField = errors.New("unsupported field type")
)

// Format is the delimited text layout of one COPY payload.
type Format struct {
	Delimiter rune
	Null      string
}

func DefaultFormat() Format {
	return Format{Delimiter: ',', Null: "nul_val"}
}

// CopyStatement builds the COPY ... FROM STDIN statement for table and cols.
func (f Format) CopyStatement(table string, cols []string) string {
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH DELIMITER AS %s NULL AS %s",
		store.QuoteIdent(table),
		strings.Join(store.QuoteIdents(cols), ", "),
		store.QuoteLiteral(string(f.Delimiter)),
		store.QuoteLiteral(f.Null),
	)
}

// AppendRow appends the encoded fields to buf, without the line terminator.
func (f Format) AppendRow(buf []byte, fields []any) ([]byte, error) {
	for i, field := range fields {
		if i > 0 {
			buf = append(buf, string(f.Delimiter)...)
		}
		value, err := f.EncodeField(field)
		if err != nil {
			return buf, fmt.Errorf("field %d: %w", i, err)
		}
		buf = append(buf, value...)
	}
	return buf, nil
}

// EncodeLine returns one encoded row.
func (f Format) EncodeLine(fields []any) (string, error) {
	buf, err := f.AppendRow(nil, fields)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// EncodeField renders one value. Absent optional values become the null token.
func (f Format) EncodeField(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return f.Null, nil
	case string:
		return f.text(val)
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case decimal.Decimal:
		return val.String(), nil
	case decimal.NullDecimal:
		if !val.Valid {
			return f.Null, nil
		}
		return val.Decimal.String(), nil
	case time.Time:
		return timestamp(val), nil
	case pgtype.Int4:
		if !val.Valid {
			return f.Null, nil
		}
		return strconv.FormatInt(int64(val.Int32), 10), nil
	case pgtype.Text:
		if !val.Valid {
			return f.Null, nil
		}
		return f.text(val.String)
	case pgtype.Timestamptz:
		if !val.Valid {
			return f.Null, nil
		}
		switch val.InfinityModifier {
		case pgtype.Infinity:
			return "infinity", nil
		case pgtype.NegativeInfinity:
			return "-infinity", nil
		}
		return timestamp(val.Time), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedField, v)
}

// text rejects strings the COPY text format would split or reinterpret.
func (f Format) text(s string) (string, error) {
	if s == f.Null || strings.ContainsRune(s, f.Delimiter) || strings.ContainsAny(s, "\\\n\r") {
		return "", fmt.Errorf("%w: %q", ErrUnsafeValue, s)
	}
	return s, nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// DecodeLine splits an encoded row back into fields. The null token decodes to nil.
func (f Format) DecodeLine(line string) []*string {
	parts := strings.Split(strings.TrimRight(line, "\n"), string(f.Delimiter))
	fields := make([]*string, len(parts))
	for i, part := range parts {
		if part == f.Null {
			continue
		}
		fields[i] = &part
	}
	return fields
}
