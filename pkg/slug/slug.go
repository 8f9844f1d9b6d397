package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Derive 从人类可读名称派生标识符：去掉变音符号、去掉空白
// 原始系统把这一步交给数据库端的规范化函数，这里在进程内完成同样的变换
func Derive(name string) string {
	// NFD分解后剔除组合用记号，再合成回NFC
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	// 越南语的Đ/đ不属于组合记号，需要单独替换
	stripped = strings.NewReplacer("Đ", "D", "đ", "d").Replace(stripped)

	// 去掉所有空白字符
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
