package shop

import "math"

const (
	// priceTierRegular 일반 가격의 등급 코드
	priceTierRegular = "0"

	// priceTierNitro Nitro 할인 가격의 등급 코드
	priceTierNitro = "4"

	// virtualCurrency 플랫폼 내부 가상 화폐의 통화 코드 (실제 화폐가 아니므로 가격 추출에서 제외)
	virtualCurrency = "discord_orb"

	// defaultPriceExponent exponent 필드 생략 시 적용되는 기본값
	defaultPriceExponent = 2
)

// PriceInfo 상품에서 추출된 정규화 가격 정보
// 해당 등급이 존재하지 않으면 필드는 nil로 남습니다.
type PriceInfo struct {
	Price      *float64
	PriceNitro *float64
	Currency   *string
}

// ExtractPrices 상품의 가격 테이블에서 일반 가격과 Nitro 할인 가격을 추출합니다.
//
// 각 등급의 가격 목록을 순회하며 가상 화폐(discord_orb) 항목은 건너뛰고,
// amount / 10^exponent를 가격으로 계산합니다.
//
// 통화 코드는 모든 등급을 통틀어 처음 만난 비가상 통화가 유지되는 반면(first-match),
// 가격은 목록 내 후속 항목이 계속 덮어씁니다(last-match). 계정 지역의 가격 목록에
// 비가상 통화가 둘 이상 포함되는 경우 통화와 금액이 불일치할 수 있으나,
// 이는 상위 API의 동작을 그대로 보존한 것입니다.
func ExtractPrices(prices map[string]PriceTier) PriceInfo {
	var result PriceInfo

	for _, tier := range []struct {
		key   string
		field **float64
	}{
		{priceTierRegular, &result.Price},
		{priceTierNitro, &result.PriceNitro},
	} {
		priceTier, ok := prices[tier.key]
		if !ok {
			continue
		}

		for _, p := range priceTier.CountryPrices.Prices {
			if p.Currency == virtualCurrency {
				continue
			}

			exponent := defaultPriceExponent
			if p.Exponent != nil {
				exponent = *p.Exponent
			}

			price := p.Amount / math.Pow(10, float64(exponent))
			*tier.field = &price

			if result.Currency == nil && p.Currency != "" {
				currency := p.Currency
				result.Currency = &currency
			}
		}
	}

	return result
}
