package Transformer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText 把数据文件统一转成 UTF-8
// 国内下载的行政区划数据常见 GBK/GB18030 编码, 用 chardet 识别后转码
func DecodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	charset, confidence := detectCharset(data)
	enc := encodingFor(charset, confidence)
	if enc == nil {
		// 短文本经常被识别成 ISO-8859-x, 沿用 shapefile 缺省 GBK 的约定
		enc = simplifiedchinese.GB18030
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: charset %s: %w", ErrDecode, charset, err)
	}
	return out, nil
}

// GbkToUtf8 DBF 属性值转码, 失败时原样返回
func GbkToUtf8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out, _, err := transform.String(simplifiedchinese.GB18030.NewDecoder(), s)
	if err != nil {
		return s
	}
	return out
}

func detectCharset(data []byte) (string, int) {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "GB-18030", 0
	}
	return result.Charset, result.Confidence
}

// encodingFor Big5 与 GBK 字节分布接近, 只在置信度很高时才按繁体处理
func encodingFor(charset string, confidence int) encoding.Encoding {
	switch strings.ToUpper(strings.ReplaceAll(charset, "-", "")) {
	case "GB18030", "GBK", "GB2312", "CP936":
		return simplifiedchinese.GB18030
	case "BIG5":
		if confidence >= 90 {
			return traditionalchinese.Big5
		}
	}
	return nil
}
