package shop

import "golang.org/x/text/language"

// LocaleMaps 하나의 로케일 응답에서 추출된 sku 기준 이름/카테고리 매핑
type LocaleMaps struct {
	Names      map[string]string // sku -> 표시 이름
	Categories map[string]string // sku -> 카테고리 이름
}

// flattenProduct 상품의 아이템을 하나의 평탄한 목록으로 정규화합니다.
//
// items가 채워진 상품은 그대로 사용하고, 변형 상품(standalone product)은
// variants[].items를 순서대로 펼치면서 각 아이템의 sku에 대해 소속 변형의 이름을
// 오버라이드 맵에 기록합니다.
//
// 이름 결정과 병합 인덱싱이 서로 다른 평탄화 결과를 보지 않도록,
// 두 경로 모두 반드시 이 함수를 통해야 합니다.
func flattenProduct(product *Product) ([]Item, map[string]string) {
	if len(product.Items) > 0 {
		return product.Items, nil
	}

	var items []Item
	variantNames := make(map[string]string)

	for _, variant := range product.Variants {
		for _, item := range variant.Items {
			if item.SkuID != "" {
				variantNames[item.SkuID] = variant.Name
			}
			items = append(items, item)
		}
	}

	return items, variantNames
}

// ParseLocale 하나의 로케일 응답을 순회하여 sku -> 이름, sku -> 카테고리 매핑을 생성합니다.
//
// 아이템의 표시 이름은 다음 우선순위로 결정됩니다.
//  1. 소속 변형(variant)의 이름
//  2. 아이템 자체의 title
//  3. 상품의 이름
//
// 빈 문자열은 값이 없는 것으로 간주하여 다음 우선순위로 넘어갑니다.
// sku가 없는 아이템은 조용히 건너뜁니다.
func ParseLocale(tree *CategoryTree) LocaleMaps {
	maps := LocaleMaps{
		Names:      make(map[string]string),
		Categories: make(map[string]string),
	}

	for ci := range tree.Categories {
		category := &tree.Categories[ci]

		for pi := range category.Products {
			product := &category.Products[pi]
			items, variantNames := flattenProduct(product)

			for i := range items {
				sku := items[i].SkuID
				if sku == "" {
					continue
				}

				name := variantNames[sku]
				if name == "" {
					name = items[i].Title
				}
				if name == "" {
					name = product.Name
				}

				maps.Names[sku] = name
				maps.Categories[sku] = category.Name
			}
		}
	}

	return maps
}

// LangSuffix 로케일 태그에서 출력 필드 접미사로 사용할 기본 언어 하위 태그를 추출합니다.
// 예: "pt-BR" -> "pt", "ru" -> "ru"
//
// BCP 47 형식으로 파싱할 수 없는 태그는 하이픈 앞부분을 그대로 사용합니다.
func LangSuffix(locale string) string {
	tag, err := language.Parse(locale)
	if err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}

	for i := 0; i < len(locale); i++ {
		if locale[i] == '-' || locale[i] == '_' {
			return locale[:i]
		}
	}
	return locale
}
