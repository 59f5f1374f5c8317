package shop

import (
	"bytes"
	"encoding/json"
)

// MergedItem 두 로케일 응답을 병합한 최종 출력 레코드
//
// 보조 로케일 이름/카테고리 필드의 키는 로케일에 따라 동적으로 결정되므로
// (name_ru, category_ja 등) 커스텀 MarshalJSON으로 직렬화합니다.
type MergedItem struct {
	SkuID              string
	NameEN             string
	NameSecondary      *string
	TypeName           string
	CategoryEN         string
	CategorySecondary  *string
	Price              *float64
	PriceNitro         *float64
	Currency           *string
	HasVariants        bool
	VariantCount       int
	Variants           []*VariantSummary
	PreviewURL         *string
	PreviewAnimatedURL *string

	// PreviewLocal 다운로드된 미리보기 이미지의 로컬 경로
	// PreviewLocalSet이 true인 경우에만 출력에 포함됩니다. (다운로드 실패 시 null)
	PreviewLocal    *string
	PreviewLocalSet bool

	// Lang 보조 로케일 필드 키의 접미사 (예: "ru", "pt")
	Lang string
}

// VariantSummary 같은 상품에 속한 색상/스타일 변형 하나의 요약 정보
type VariantSummary struct {
	SkuID              string
	NameEN             string
	NameSecondary      *string
	PreviewURL         *string
	PreviewAnimatedURL *string

	PreviewLocal    *string
	PreviewLocalSet bool

	Lang string
}

// MarshalJSON 동적 로케일 접미사 키를 포함하여 고정된 키 순서로 직렬화합니다.
func (m *MergedItem) MarshalJSON() ([]byte, error) {
	w := newOrderedObjectWriter()
	w.field("sku_id", m.SkuID)
	w.field("name_en", m.NameEN)
	w.field("name_"+m.Lang, m.NameSecondary)
	w.field("type", m.TypeName)
	w.field("category_en", m.CategoryEN)
	w.field("category_"+m.Lang, m.CategorySecondary)
	w.field("price", m.Price)
	w.field("price_nitro", m.PriceNitro)
	w.field("currency", m.Currency)
	w.field("has_variants", m.HasVariants)
	w.field("variant_count", m.VariantCount)
	w.field("variants", m.Variants)
	w.field("preview_url", m.PreviewURL)
	w.field("preview_animated_url", m.PreviewAnimatedURL)
	if m.PreviewLocalSet {
		w.field("preview_local", m.PreviewLocal)
	}
	return w.finish()
}

// MarshalJSON 동적 로케일 접미사 키를 포함하여 고정된 키 순서로 직렬화합니다.
func (v *VariantSummary) MarshalJSON() ([]byte, error) {
	w := newOrderedObjectWriter()
	w.field("sku_id", v.SkuID)
	w.field("name_en", v.NameEN)
	w.field("name_"+v.Lang, v.NameSecondary)
	w.field("preview_url", v.PreviewURL)
	w.field("preview_animated_url", v.PreviewAnimatedURL)
	if v.PreviewLocalSet {
		w.field("preview_local", v.PreviewLocal)
	}
	return w.finish()
}

// orderedObjectWriter 키 순서가 보장되는 JSON 객체 직렬화 헬퍼
// 이름에 포함될 수 있는 &, < 등의 문자가 이스케이프되지 않도록 처리합니다.
type orderedObjectWriter struct {
	buf   bytes.Buffer
	first bool
	err   error
}

func newOrderedObjectWriter() *orderedObjectWriter {
	w := &orderedObjectWriter{first: true}
	w.buf.WriteByte('{')
	return w
}

func (w *orderedObjectWriter) field(key string, value any) {
	if w.err != nil {
		return
	}

	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false

	keyBytes, err := json.Marshal(key)
	if err != nil {
		w.err = err
		return
	}
	w.buf.Write(keyBytes)
	w.buf.WriteByte(':')

	var valueBuf bytes.Buffer
	enc := json.NewEncoder(&valueBuf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		w.err = err
		return
	}
	// json.Encoder는 항상 개행을 덧붙이므로 제거
	w.buf.Write(bytes.TrimRight(valueBuf.Bytes(), "\n"))
}

func (w *orderedObjectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}
