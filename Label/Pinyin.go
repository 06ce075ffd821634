package Label

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// hasHan 是否包含汉字
func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// chineseToPinyin 将中文转换为首字母大写的拼音, 音节之间用空格分隔
// 例如 "北京市" -> "Bei Jing Shi"
func chineseToPinyin(s string) string {
	a := pinyin.NewArgs()
	a.Style = pinyin.NORMAL
	a.Heteronym = false

	var b strings.Builder
	lastSpace := true
	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			b.WriteRune(r)
			lastSpace = unicode.IsSpace(r)
			continue
		}
		py := pinyin.SinglePinyin(r, a)
		if len(py) == 0 || py[0] == "" {
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ToUpper(py[0][:1]) + py[0][1:])
		lastSpace = false
	}
	return b.String()
}
