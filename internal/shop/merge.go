package shop

import (
	"fmt"
	"strings"
)

// bundleMarker 변형 목록에서 제외되는 번들 상품의 영문 이름 표식 (대소문자 구분)
const bundleMarker = "Bundle"

// MergeItems 두 로케일의 카탈로그 응답을 병합하여 최종 아이템 목록을 생성합니다.
//
// 기본 로케일(영어)이 포함 여부의 기준입니다. 기본 로케일에서 이름이 결정되지 않은
// sku는 보조 로케일에 존재하더라도 출력에서 제외됩니다. 반대로 보조 로케일에 없는
// sku의 보조 이름/카테고리는 명시적 null로 출력됩니다.
//
// 출력 순서는 기본 로케일 트리를 순회하며 아이템을 처음 만난 순서(삽입 순서)입니다.
func MergeItems(primary, secondary *CategoryTree, secondaryLocale string) []*MergedItem {
	en := ParseLocale(primary)
	sec := ParseLocale(secondary)
	lang := LangSuffix(secondaryLocale)

	index := buildPrimaryIndex(primary)

	// 같은 상품의 같은 종류 아이템들은 동일한 변형 목록을 공유합니다.
	variantCache := make(map[string][]*VariantSummary)

	var result []*MergedItem
	for _, sku := range index.order {
		nameEN := en.Names[sku]
		if nameEN == "" {
			// 기본 로케일에서 이름이 결정되지 않은 아이템은 제외 (유일한 포함 필터)
			continue
		}

		item := index.items[sku]
		staticURL, animatedURL := ResolvePreview(item)
		prices := index.prices[sku]
		productSku := index.itemProduct[sku]

		var variants []*VariantSummary
		if siblings := index.productItems[productSku]; len(siblings) > 1 {
			variants = variantGroup(variantCache, index, en, sec, lang, productSku, item.Type, siblings)
		}

		// 필터링 후에도 2개 이상 남는 경우에만 변형 그룹으로 인정합니다.
		hasVariants := len(variants) > 1
		variantCount := 0
		if hasVariants {
			variantCount = len(variants)
		} else {
			variants = nil
		}

		result = append(result, &MergedItem{
			SkuID:              sku,
			NameEN:             nameEN,
			NameSecondary:      lookup(sec.Names, sku),
			TypeName:           ItemTypeName(item.Type),
			CategoryEN:         en.Categories[sku],
			CategorySecondary:  lookup(sec.Categories, sku),
			Price:              prices.Price,
			PriceNitro:         prices.PriceNitro,
			Currency:           prices.Currency,
			HasVariants:        hasVariants,
			VariantCount:       variantCount,
			Variants:           variants,
			PreviewURL:         staticURL,
			PreviewAnimatedURL: animatedURL,
			Lang:               lang,
		})
	}

	return result
}

// primaryIndex 기본 로케일 트리에서 구축되는 sku 기준 조인 인덱스
type primaryIndex struct {
	order        []string             // sku를 처음 만난 순서
	items        map[string]*Item     // sku -> 원본 아이템
	prices       map[string]PriceInfo // sku -> 소속 상품의 추출된 가격
	itemProduct  map[string]string    // sku -> 소속 상품의 sku
	productItems map[string][]string  // 상품 sku -> 소속 아이템 sku 목록
}

// buildPrimaryIndex 기본 로케일 트리를 순회하여 병합에 필요한 조인 인덱스를 구축합니다.
// 아이템 평탄화는 이름 결정(ParseLocale)과 동일하게 flattenProduct를 사용합니다.
func buildPrimaryIndex(tree *CategoryTree) *primaryIndex {
	index := &primaryIndex{
		items:        make(map[string]*Item),
		prices:       make(map[string]PriceInfo),
		itemProduct:  make(map[string]string),
		productItems: make(map[string][]string),
	}

	for ci := range tree.Categories {
		category := &tree.Categories[ci]

		for pi := range category.Products {
			product := &category.Products[pi]
			items, _ := flattenProduct(product)

			prices := ExtractPrices(product.Prices)

			for i := range items {
				sku := items[i].SkuID
				if sku == "" {
					continue
				}

				if _, seen := index.items[sku]; !seen {
					index.order = append(index.order, sku)
				}
				index.items[sku] = &items[i]
				index.prices[sku] = prices
				index.itemProduct[sku] = product.SkuID
				index.productItems[product.SkuID] = append(index.productItems[product.SkuID], sku)
			}
		}
	}

	return index
}

// variantGroup 같은 상품에 속한 형제 아이템들 중 같은 종류이면서 번들이 아닌 것들의
// 변형 목록을 반환합니다. 결과는 (상품 sku, 아이템 종류) 단위로 캐시되어 공유됩니다.
func variantGroup(cache map[string][]*VariantSummary, index *primaryIndex, en, sec LocaleMaps, lang, productSku string, itemType int, siblings []string) []*VariantSummary {
	cacheKey := fmt.Sprintf("%s\x00%d", productSku, itemType)
	if cached, ok := cache[cacheKey]; ok {
		return cached
	}

	var variants []*VariantSummary
	for _, siblingSku := range siblings {
		sibling := index.items[siblingSku]
		if sibling == nil || sibling.Type != itemType {
			continue
		}

		siblingName := en.Names[siblingSku]
		if strings.Contains(siblingName, bundleMarker) {
			// 번들은 여러 종류를 묶는 판매 단위이므로 색상 변형 목록에 포함하지 않습니다.
			continue
		}

		staticURL, animatedURL := ResolvePreview(sibling)
		variants = append(variants, &VariantSummary{
			SkuID:              siblingSku,
			NameEN:             siblingName,
			NameSecondary:      lookup(sec.Names, siblingSku),
			PreviewURL:         staticURL,
			PreviewAnimatedURL: animatedURL,
			Lang:               lang,
		})
	}

	cache[cacheKey] = variants
	return variants
}

// lookup 맵에 키가 있으면 값의 포인터를, 없으면 nil을 반환합니다.
func lookup(m map[string]string, key string) *string {
	if v, ok := m[key]; ok {
		return &v
	}
	return nil
}
