package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "discord-shop-fetcher"

	// DefaultFilename 애플리케이션 초기화 시 참조하는 기본 설정 파일명입니다.
	// 실행 인자를 통해 명시적인 경로가 제공되지 않을 경우, 시스템은 이 파일을 탐색하여 구성을 로드합니다.
	DefaultFilename = AppName + ".json"

	// envPrefix 환경 변수 접두사입니다. (예: SHOPFETCHER_TOKEN)
	envPrefix = "SHOPFETCHER_"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug bool `json:"debug"`

	// Token 샵 API 호출에 사용되는 인증 토큰입니다. (필수)
	Token string `json:"token" validate:"required"`

	// Proxy SOCKS5 프록시 주소입니다. (선택, 형식: host:port 또는 user:pass@host:port)
	Proxy string `json:"proxy" validate:"omitempty,proxy_addr"`

	// SecondaryLocale 이중 언어 이름 수집에 사용할 두 번째 로케일입니다. (예: ru, ja, pt-BR)
	SecondaryLocale string `json:"secondary_locale" validate:"required,locale_tag"`

	// OutputFile 병합된 아이템 목록이 저장될 JSON 파일 경로입니다.
	OutputFile string `json:"output_file" validate:"required"`

	HTTPRetry HTTPRetryConfig `json:"http_retry"`
	Previews  PreviewsConfig  `json:"previews"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	if err := validateStruct(c, "AppConfig"); err != nil {
		return err
	}

	if err := c.HTTPRetry.validate(); err != nil {
		return err
	}

	return c.Previews.validate()
}

// HTTPRetryConfig HTTP 요청 실패 시 재시도 횟수와 대기 시간을 정의하는 설정 구조체
type HTTPRetryConfig struct {
	MaxRetries    int    `json:"max_retries" validate:"min=0,max=10"`
	MinRetryDelay string `json:"min_retry_delay"`
	MaxRetryDelay string `json:"max_retry_delay"`
}

func (c *HTTPRetryConfig) validate() error {
	if _, err := time.ParseDuration(c.MinRetryDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("최소 재시도 대기 시간(min_retry_delay) 설정이 올바르지 않습니다: '%s' (예: 1s, 500ms)", c.MinRetryDelay))
	}
	if _, err := time.ParseDuration(c.MaxRetryDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("최대 재시도 대기 시간(max_retry_delay) 설정이 올바르지 않습니다: '%s' (예: 30s)", c.MaxRetryDelay))
	}
	if c.MinDelay() > c.MaxDelay() {
		return apperrors.New(apperrors.InvalidInput, "최소 재시도 대기 시간(min_retry_delay)이 최대 재시도 대기 시간(max_retry_delay)보다 클 수 없습니다")
	}
	return nil
}

// MinDelay 파싱된 최소 재시도 대기 시간을 반환합니다. (validate 통과를 전제로 함)
func (c *HTTPRetryConfig) MinDelay() time.Duration {
	d, _ := time.ParseDuration(c.MinRetryDelay)
	return d
}

// MaxDelay 파싱된 최대 재시도 대기 시간을 반환합니다. (validate 통과를 전제로 함)
func (c *HTTPRetryConfig) MaxDelay() time.Duration {
	d, _ := time.ParseDuration(c.MaxRetryDelay)
	return d
}

// PreviewsConfig 미리보기 이미지 다운로드 동작을 정의하는 설정 구조체
type PreviewsConfig struct {
	// Skip true인 경우 미리보기 이미지 다운로드를 수행하지 않습니다.
	Skip bool `json:"skip"`

	// Dir 다운로드한 미리보기 이미지가 저장될 디렉토리 경로입니다.
	Dir string `json:"dir" validate:"required"`

	// Pacing 아이템 간 다운로드 요청 사이의 대기 시간입니다. (서버 부하 방지용)
	Pacing string `json:"pacing"`

	// Timeout 이미지 1건 다운로드에 허용되는 최대 시간입니다.
	Timeout string `json:"timeout"`
}

func (c *PreviewsConfig) validate() error {
	if _, err := time.ParseDuration(c.Pacing); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("다운로드 간격(previews.pacing) 설정이 올바르지 않습니다: '%s' (예: 100ms)", c.Pacing))
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("다운로드 제한 시간(previews.timeout) 설정이 올바르지 않습니다: '%s' (예: 30s)", c.Timeout))
	}
	return nil
}

// PacingDuration 파싱된 다운로드 간격을 반환합니다. (validate 통과를 전제로 함)
func (c *PreviewsConfig) PacingDuration() time.Duration {
	d, _ := time.ParseDuration(c.Pacing)
	return d
}

// TimeoutDuration 파싱된 다운로드 제한 시간을 반환합니다. (validate 통과를 전제로 함)
func (c *PreviewsConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// defaultConfig 모든 설정 항목의 기본값을 반환합니다.
// koanf의 structs Provider를 통해 가장 낮은 우선순위로 로드됩니다.
func defaultConfig() AppConfig {
	return AppConfig{
		SecondaryLocale: "ru",
		OutputFile:      "discord_shop.json",
		HTTPRetry: HTTPRetryConfig{
			MaxRetries:    3,
			MinRetryDelay: "2s",
			MaxRetryDelay: "30s",
		},
		Previews: PreviewsConfig{
			Dir:     "previews",
			Pacing:  "100ms",
			Timeout: "30s",
		},
	}
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
//
// 로드 우선순위: 기본값 < JSON 설정 파일 < 환경 변수
// 설정 파일이 존재하지 않는 경우는 에러가 아닙니다. 환경 변수만으로도 모든 설정을 구성할 수 있습니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	if err := k.Load(structs.Provider(defaultConfig(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (기본값 덮어쓰기)
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if !os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
		}
	}

	// 3. 환경 변수 로드 (최우선 순위, JSON 설정 덮어쓰기)
	// 접두사: SHOPFETCHER_
	// 구분자: 이중 언더스코어(__)를 점(.)으로 변환 (계층 구조 표현)
	// 예: SHOPFETCHER_HTTP_RETRY__MAX_RETRIES -> http_retry.max_retries
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 언마샬링 (Strict Validation 적용)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true, // 파일에 존재하지만 구조체에 없는 필드가 있을 경우 에러를 발생시킴
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 5. 유효성 검사 수행 (정합성 체크)
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정의 유효성 검증에 실패했습니다")
	}

	return &appConfig, nil
}
