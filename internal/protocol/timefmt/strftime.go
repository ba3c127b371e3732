package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Strftime 按 strftime 格式格式化时间
//
// 支持的指令：
//
//	%Y %y %m %d %j          年、两位年、月、日、年内第几天
//	%H %I %M %S %f %p       时(24)、时(12)、分、秒、微秒、AM/PM
//	%b %B %a %A             月份与星期的缩写/全称（英文）
//	%z %Z                   UTC 偏移与时区缩写
//	%%                      字面 %
//
// 其它指令返回 ErrUnsupportedDirective。
func Strftime(t time.Time, format string) (string, error) {
	if format == "" {
		return "", ErrEmptyFormat
	}

	var b strings.Builder
	b.Grow(len(format) + 16)

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("%w: trailing %%", ErrUnsupportedDirective)
		}
		i++
		if err := writeDirective(&b, t, format[i]); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func writeDirective(b *strings.Builder, t time.Time, d byte) error {
	switch d {
	case 'Y':
		pad(b, t.Year(), 4)
	case 'y':
		pad(b, t.Year()%100, 2)
	case 'm':
		pad(b, int(t.Month()), 2)
	case 'd':
		pad(b, t.Day(), 2)
	case 'j':
		pad(b, t.YearDay(), 3)
	case 'H':
		pad(b, t.Hour(), 2)
	case 'I':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		pad(b, h, 2)
	case 'M':
		pad(b, t.Minute(), 2)
	case 'S':
		pad(b, t.Second(), 2)
	case 'f':
		pad(b, t.Nanosecond()/1000, 6)
	case 'p':
		b.WriteString(t.Format("PM"))
	case 'b':
		b.WriteString(t.Month().String()[:3])
	case 'B':
		b.WriteString(t.Month().String())
	case 'a':
		b.WriteString(t.Weekday().String()[:3])
	case 'A':
		b.WriteString(t.Weekday().String())
	case 'z':
		b.WriteString(t.Format("-0700"))
	case 'Z':
		b.WriteString(t.Format("MST"))
	case '%':
		b.WriteByte('%')
	default:
		return fmt.Errorf("%w: %%%c", ErrUnsupportedDirective, d)
	}
	return nil
}

// pad 写入至少 width 位的十进制数，不足补零
func pad(b *strings.Builder, n, width int) {
	s := strconv.Itoa(n)
	for i := len(s); i < width; i++ {
		b.WriteByte('0')
	}
	b.WriteString(s)
}
