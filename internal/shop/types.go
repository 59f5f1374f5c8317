// Package shop 샵 카탈로그 API 응답의 파싱, 가격 추출, 미리보기 URL 결정,
// 두 로케일 응답의 병합을 담당하는 핵심 도메인 패키지입니다.
package shop

import "fmt"

// ItemType 아이템 종류 코드 (API의 type 필드)
const (
	ItemTypeAvatarDecoration = 0
	ItemTypeProfileEffect    = 1
	ItemTypeNameplate        = 2
)

// ItemTypeName 아이템 종류 코드를 출력용 이름으로 변환합니다.
// 알려지지 않은 코드는 TYPE_<n> 형식으로 표기합니다.
func ItemTypeName(itemType int) string {
	switch itemType {
	case ItemTypeAvatarDecoration:
		return "AVATAR_DECORATION"
	case ItemTypeProfileEffect:
		return "PROFILE_EFFECT"
	case ItemTypeNameplate:
		return "NAMEPLATE"
	default:
		return fmt.Sprintf("TYPE_%d", itemType)
	}
}

// CategoryTree 하나의 로케일에 대한 카탈로그 API 응답 전체
type CategoryTree struct {
	Categories []Category `json:"categories"`
}

// Category 카탈로그 내 하나의 카테고리
type Category struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Product 카테고리 내 하나의 상품
//
// 구매 가능한 아이템은 items에 평탄하게 담기거나,
// 색상/스타일 변형 상품(standalone product)의 경우 variants[].items에 중첩되어 담깁니다.
// 두 형태 중 정확히 하나만 채워집니다.
type Product struct {
	SkuID    string               `json:"sku_id"`
	Name     string               `json:"name"`
	Prices   map[string]PriceTier `json:"prices"`
	Items    []Item               `json:"items"`
	Variants []Variant            `json:"variants"`
}

// Variant 상품 내 이름이 부여된 색상/스타일 그룹
type Variant struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item 구매 가능한 최소 단위 아이템
//
// sku_id는 하나의 로케일 응답 내에서 유일하며, 두 로케일 응답을 결합하는 식별 키입니다.
// 미리보기 관련 필드는 아이템 종류(type)에 따라 서로 다른 조합으로 채워집니다.
type Item struct {
	SkuID  string     `json:"sku_id"`
	Type   int        `json:"type"`
	Title  string     `json:"title"`
	Asset  string     `json:"asset"`
	Assets ItemAssets `json:"assets"`

	// 프로필 효과(type 1) 전용 미리보기 필드
	ThumbnailPreviewSrc string        `json:"thumbnailPreviewSrc"`
	ReducedMotionSrc    string        `json:"reducedMotionSrc"`
	Effects             []EffectFrame `json:"effects"`
}

// ItemAssets 아이템의 정적/애니메이션 이미지 URL 묶음
type ItemAssets struct {
	StaticImageURL   string `json:"static_image_url"`
	AnimatedImageURL string `json:"animated_image_url"`
}

// EffectFrame 프로필 효과의 개별 효과 항목
type EffectFrame struct {
	Src string `json:"src"`
}

// PriceTier 가격 등급 코드("0": 일반, "4": Nitro 할인)별 가격 정보
type PriceTier struct {
	CountryPrices CountryPrices `json:"country_prices"`
}

// CountryPrices 계정 지역에 대한 가격 목록
type CountryPrices struct {
	Prices []CountryPrice `json:"prices"`
}

// CountryPrice 하나의 통화에 대한 가격 항목
type CountryPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	// Exponent 10의 거듭제곱 지수 (amount / 10^exponent가 실제 가격, 생략 시 2)
	Exponent *int `json:"exponent"`
}
