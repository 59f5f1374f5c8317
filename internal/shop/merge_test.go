package shop

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTree 이름 접미사를 달리하여 로케일별 테스트 트리를 생성하는 헬퍼
func newTestTree(suffix string) *CategoryTree {
	return &CategoryTree{Categories: []Category{
		{
			Name: "Decorations" + suffix,
			Products: []Product{
				{
					SkuID: "prod1",
					Name:  "Cool Deco" + suffix,
					Prices: map[string]PriceTier{
						"0": {CountryPrices: CountryPrices{Prices: []CountryPrice{
							{Currency: "usd", Amount: 499, Exponent: intPtr(2)},
						}}},
					},
					Variants: []Variant{
						{Name: "Red" + suffix, Items: []Item{{SkuID: "s-red", Type: 0}}},
						{Name: "Blue" + suffix, Items: []Item{{SkuID: "s-blue", Type: 0}}},
					},
				},
				{
					SkuID: "prod2",
					Name:  "Single Item" + suffix,
					Items: []Item{{SkuID: "s-single", Type: 2}},
				},
			},
		},
	}}
}

// ============================================================================
// 병합 동작
// ============================================================================

// TestMergeItems_Bilingual 두 로케일의 이름이 하나의 레코드로 병합되는지 검증합니다.
func TestMergeItems_Bilingual(t *testing.T) {
	t.Parallel()

	result := MergeItems(newTestTree(""), newTestTree("-ru"), "ru")
	require.Len(t, result, 3)

	first := result[0]
	assert.Equal(t, "s-red", first.SkuID)
	assert.Equal(t, "Red", first.NameEN)
	require.NotNil(t, first.NameSecondary)
	assert.Equal(t, "Red-ru", *first.NameSecondary)
	assert.Equal(t, "Decorations", first.CategoryEN)
	require.NotNil(t, first.CategorySecondary)
	assert.Equal(t, "Decorations-ru", *first.CategorySecondary)
	assert.Equal(t, "AVATAR_DECORATION", first.TypeName)
	require.NotNil(t, first.Price)
	assert.InDelta(t, 4.99, *first.Price, 1e-9)
	assert.Equal(t, "ru", first.Lang)
}

// TestMergeItems_InclusionFilter 기본 로케일에 이름이 없는 sku는 출력에서 제외되는지 검증합니다.
func TestMergeItems_InclusionFilter(t *testing.T) {
	t.Parallel()

	primary := &CategoryTree{Categories: []Category{
		{Name: "C", Products: []Product{
			{SkuID: "p1", Name: "Named", Items: []Item{{SkuID: "s1", Type: 0}}},
			// 이름이 결정되지 않는 아이템 (변형/Title/상품 이름 모두 없음)
			{SkuID: "p2", Name: "", Items: []Item{{SkuID: "s2", Type: 0}}},
		}},
	}}
	// 보조 로케일에만 존재하는 sku는 출력되지 않아야 합니다.
	secondary := &CategoryTree{Categories: []Category{
		{Name: "C", Products: []Product{
			{SkuID: "p3", Name: "Secondary Only", Items: []Item{{SkuID: "s3", Type: 0}}},
		}},
	}}

	result := MergeItems(primary, secondary, "ru")
	require.Len(t, result, 1)

	assert.Equal(t, "s1", result[0].SkuID)
}

// TestMergeItems_SecondaryMissingIsNull 보조 로케일에 없는 sku의 보조 필드는 명시적 null인지 검증합니다.
func TestMergeItems_SecondaryMissingIsNull(t *testing.T) {
	t.Parallel()

	result := MergeItems(newTestTree(""), &CategoryTree{}, "ru")
	require.Len(t, result, 3)

	assert.Nil(t, result[0].NameSecondary)
	assert.Nil(t, result[0].CategorySecondary)
}

// TestMergeItems_InsertionOrder 출력 순서가 기본 트리에서 아이템을 처음 만난 순서인지 검증합니다.
func TestMergeItems_InsertionOrder(t *testing.T) {
	t.Parallel()

	result := MergeItems(newTestTree(""), newTestTree(""), "ru")
	require.Len(t, result, 3)

	skus := []string{result[0].SkuID, result[1].SkuID, result[2].SkuID}
	assert.Equal(t, []string{"s-red", "s-blue", "s-single"}, skus)
}

// ============================================================================
// 변형 그룹핑
// ============================================================================

// TestMergeItems_VariantGrouping 같은 상품, 같은 종류의 형제 아이템들이 변형 목록으로 묶이는지 검증합니다.
func TestMergeItems_VariantGrouping(t *testing.T) {
	t.Parallel()

	result := MergeItems(newTestTree(""), newTestTree(""), "ru")
	require.Len(t, result, 3)

	red := result[0]
	assert.True(t, red.HasVariants)
	assert.Equal(t, 2, red.VariantCount)
	require.Len(t, red.Variants, 2)
	assert.Equal(t, "s-red", red.Variants[0].SkuID)
	assert.Equal(t, "s-blue", red.Variants[1].SkuID)

	// 같은 상품의 형제들은 동일한 변형 목록을 공유합니다. (자기 자신 포함)
	blue := result[1]
	assert.Equal(t, red.Variants, blue.Variants)

	// 형제가 없는 아이템은 변형 목록이 없습니다.
	single := result[2]
	assert.False(t, single.HasVariants)
	assert.Equal(t, 0, single.VariantCount)
	assert.Nil(t, single.Variants)
}

// TestMergeItems_BundleExcludedFromVariants 영문 이름에 "Bundle"이 포함된 형제는
// 변형 목록에서 제외되는지 검증합니다.
func TestMergeItems_BundleExcludedFromVariants(t *testing.T) {
	t.Parallel()

	tree := &CategoryTree{Categories: []Category{
		{Name: "C", Products: []Product{
			{
				SkuID: "p1",
				Name:  "Packs",
				Variants: []Variant{
					{Name: "Red Pack", Items: []Item{{SkuID: "s1", Type: 1}}},
					{Name: "Blue Pack", Items: []Item{{SkuID: "s2", Type: 1}}},
					{Name: "Holiday Bundle", Items: []Item{{SkuID: "s3", Type: 1}}},
				},
			},
		}},
	}}

	result := MergeItems(tree, tree, "ru")
	require.Len(t, result, 3)

	first := result[0]
	assert.True(t, first.HasVariants)
	assert.Equal(t, 2, first.VariantCount)
	require.Len(t, first.Variants, 2)
	assert.Equal(t, "Red Pack", first.Variants[0].NameEN)
	assert.Equal(t, "Blue Pack", first.Variants[1].NameEN)
}

// TestMergeItems_VariantTypeFilter 종류가 다른 형제는 변형 목록에서 제외되는지 검증합니다.
func TestMergeItems_VariantTypeFilter(t *testing.T) {
	t.Parallel()

	tree := &CategoryTree{Categories: []Category{
		{Name: "C", Products: []Product{
			{
				SkuID: "p1",
				Name:  "Mixed",
				Variants: []Variant{
					{Name: "Deco A", Items: []Item{{SkuID: "s1", Type: 0}}},
					{Name: "Deco B", Items: []Item{{SkuID: "s2", Type: 0}}},
					{Name: "Effect", Items: []Item{{SkuID: "s3", Type: 1}}},
				},
			},
		}},
	}}

	result := MergeItems(tree, tree, "ru")
	require.Len(t, result, 3)

	// 장식(type 0) 아이템의 변형 목록에는 효과(type 1)가 포함되지 않습니다.
	deco := result[0]
	assert.Equal(t, 2, deco.VariantCount)

	// 효과 아이템은 같은 종류의 형제가 자기 자신뿐이므로 변형 그룹이 아닙니다.
	effect := result[2]
	assert.False(t, effect.HasVariants)
	assert.Nil(t, effect.Variants)
}

// ============================================================================
// 직렬화
// ============================================================================

// TestMergedItem_MarshalJSON 동적 로케일 키와 고정된 키 순서로 직렬화되는지 검증합니다.
func TestMergedItem_MarshalJSON(t *testing.T) {
	t.Parallel()

	result := MergeItems(newTestTree(""), newTestTree("-pt"), "pt-BR")
	require.Len(t, result, 3)

	data, err := json.Marshal(result[2])
	require.NoError(t, err)

	jsonStr := string(data)
	assert.Contains(t, jsonStr, `"name_pt":"Single Item-pt"`)
	assert.Contains(t, jsonStr, `"category_pt":"Decorations-pt"`)
	assert.NotContains(t, jsonStr, "name_pt-BR")

	// 다운로드가 수행되지 않은 경우 preview_local 키 자체가 출력되지 않습니다.
	assert.NotContains(t, jsonStr, "preview_local")

	// 키 순서 검증
	var keys []string
	dec := json.NewDecoder(bytes.NewReader(data))
	_, err = dec.Token() // '{'
	require.NoError(t, err)
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		if key, ok := tok.(string); ok {
			keys = append(keys, key)
			var discard json.RawMessage
			require.NoError(t, dec.Decode(&discard))
		}
	}
	assert.Equal(t, []string{
		"sku_id", "name_en", "name_pt", "type", "category_en", "category_pt",
		"price", "price_nitro", "currency", "has_variants", "variant_count",
		"variants", "preview_url", "preview_animated_url",
	}, keys)
}

// TestMergedItem_MarshalJSON_PreviewLocal 다운로드 수행 후에는 preview_local 키가 포함되는지 검증합니다.
func TestMergedItem_MarshalJSON_PreviewLocal(t *testing.T) {
	t.Parallel()

	path := "previews/s1.png"
	item := &MergedItem{
		SkuID:           "s1",
		NameEN:          "Name",
		TypeName:        "NAMEPLATE",
		Lang:            "ru",
		PreviewLocal:    &path,
		PreviewLocalSet: true,
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"preview_local":"previews/s1.png"`)

	// 다운로드에 실패한 경우 키는 존재하되 값은 null입니다.
	item.PreviewLocal = nil
	data, err = json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"preview_local":null`)
}

// TestMergedItem_MarshalJSON_NoHTMLEscape 이름의 특수 문자(&)가 이스케이프되지 않는지 검증합니다.
func TestMergedItem_MarshalJSON_NoHTMLEscape(t *testing.T) {
	t.Parallel()

	item := &MergedItem{
		SkuID:    "s1",
		NameEN:   "Black & White",
		TypeName: "NAMEPLATE",
		Lang:     "ru",
	}

	// json.Marshal은 최상위에서 HTML 이스케이프를 다시 적용하므로
	// 실제 저장 경로와 동일하게 SetEscapeHTML(false) 인코더로 직렬화합니다.
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	require.NoError(t, encoder.Encode(item))

	assert.Contains(t, buf.String(), `"name_en":"Black & White"`)
	assert.NotContains(t, buf.String(), `&`)
}
