package shop

import "fmt"

// decorationPresetURLFormat 아바타 장식의 명시적 이미지 URL이 없을 때 사용되는 CDN URL 템플릿
const decorationPresetURLFormat = "https://cdn.discordapp.com/avatar-decoration-presets/%s.png"

// ResolvePreview 아이템의 미리보기 이미지 URL(정적, 애니메이션)을 결정합니다.
//
// 아이템 종류마다 API가 미리보기 필드를 서로 다른 위치에 담기 때문에,
// 종류별로 고정된 우선순위의 대체(fallback) 순서를 따릅니다.
//
//   - 아바타 장식(0): assets.static_image_url → asset 식별자 기반 CDN URL / assets.animated_image_url
//   - 프로필 효과(1): thumbnailPreviewSrc → reducedMotionSrc → effects 첫 항목의 src / 애니메이션 없음
//   - 명판(2): assets.static_image_url / assets.animated_image_url
//   - 알 수 없는 종류: 둘 다 없음
func ResolvePreview(item *Item) (staticURL, animatedURL *string) {
	switch item.Type {
	case ItemTypeAvatarDecoration:
		staticURL = strPtrOrNil(item.Assets.StaticImageURL)
		if staticURL == nil && item.Asset != "" {
			url := fmt.Sprintf(decorationPresetURLFormat, item.Asset)
			staticURL = &url
		}
		animatedURL = strPtrOrNil(item.Assets.AnimatedImageURL)

	case ItemTypeProfileEffect:
		staticURL = strPtrOrNil(item.ThumbnailPreviewSrc)
		if staticURL == nil {
			staticURL = strPtrOrNil(item.ReducedMotionSrc)
		}
		if staticURL == nil && len(item.Effects) > 0 {
			staticURL = strPtrOrNil(item.Effects[0].Src)
		}

	case ItemTypeNameplate:
		staticURL = strPtrOrNil(item.Assets.StaticImageURL)
		animatedURL = strPtrOrNil(item.Assets.AnimatedImageURL)
	}

	return staticURL, animatedURL
}

// strPtrOrNil 빈 문자열을 nil로 취급하는 포인터 변환 헬퍼
func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
