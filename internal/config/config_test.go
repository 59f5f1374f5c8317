package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 테스트용 설정 파일을 임시 디렉토리에 생성하고 경로를 반환합니다.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ============================================================================
// 설정 파일 로드
// ============================================================================

// TestLoadWithFile_Defaults 설정 파일에 명시되지 않은 항목은 기본값으로 채워지는지 검증합니다.
func TestLoadWithFile_Defaults(t *testing.T) {
	path := writeConfigFile(t, `{"token": "secret-token"}`)

	appConfig, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-token", appConfig.Token)
	assert.Equal(t, "ru", appConfig.SecondaryLocale)
	assert.Equal(t, "discord_shop.json", appConfig.OutputFile)
	assert.Equal(t, 3, appConfig.HTTPRetry.MaxRetries)
	assert.Equal(t, 2*time.Second, appConfig.HTTPRetry.MinDelay())
	assert.Equal(t, 30*time.Second, appConfig.HTTPRetry.MaxDelay())
	assert.False(t, appConfig.Previews.Skip)
	assert.Equal(t, "previews", appConfig.Previews.Dir)
	assert.Equal(t, 100*time.Millisecond, appConfig.Previews.PacingDuration())
	assert.Equal(t, 30*time.Second, appConfig.Previews.TimeoutDuration())
}

// TestLoadWithFile_FileOverridesDefaults 설정 파일의 값이 기본값을 덮어쓰는지 검증합니다.
func TestLoadWithFile_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `{
		"token": "secret-token",
		"secondary_locale": "pt-BR",
		"output_file": "shop.json",
		"http_retry": {
			"max_retries": 5,
			"min_retry_delay": "1s",
			"max_retry_delay": "10s"
		},
		"previews": {
			"skip": true,
			"dir": "images"
		}
	}`)

	appConfig, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "pt-BR", appConfig.SecondaryLocale)
	assert.Equal(t, "shop.json", appConfig.OutputFile)
	assert.Equal(t, 5, appConfig.HTTPRetry.MaxRetries)
	assert.Equal(t, time.Second, appConfig.HTTPRetry.MinDelay())
	assert.True(t, appConfig.Previews.Skip)
	assert.Equal(t, "images", appConfig.Previews.Dir)
}

// TestLoadWithFile_MissingFileUsesEnv 설정 파일이 없어도 환경 변수만으로 로드 가능한지 검증합니다.
func TestLoadWithFile_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("SHOPFETCHER_TOKEN", "env-token")
	t.Setenv("SHOPFETCHER_SECONDARY_LOCALE", "ja")

	appConfig, err := LoadWithFile(filepath.Join(t.TempDir(), "no-such-file.json"))
	require.NoError(t, err)

	assert.Equal(t, "env-token", appConfig.Token)
	assert.Equal(t, "ja", appConfig.SecondaryLocale)
}

// TestLoadWithFile_EnvOverridesFile 환경 변수가 설정 파일의 값보다 우선하는지 검증합니다.
func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	t.Setenv("SHOPFETCHER_TOKEN", "env-token")
	t.Setenv("SHOPFETCHER_HTTP_RETRY__MAX_RETRIES", "7")

	path := writeConfigFile(t, `{"token": "file-token", "http_retry": {"max_retries": 2}}`)

	appConfig, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", appConfig.Token)
	assert.Equal(t, 7, appConfig.HTTPRetry.MaxRetries)
}

// TestLoadWithFile_UnknownKeyRejected 구조체에 존재하지 않는 설정 항목이 파일에 포함된 경우
// 잘못된 입력(InvalidInput) 에러를 반환하는지 검증합니다.
func TestLoadWithFile_UnknownKeyRejected(t *testing.T) {
	path := writeConfigFile(t, `{"token": "secret-token", "unknown_key": true}`)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
}

// TestLoadWithFile_InvalidJSON 올바르지 않은 JSON 설정 파일에 대해 에러를 반환하는지 검증합니다.
func TestLoadWithFile_InvalidJSON(t *testing.T) {
	path := writeConfigFile(t, `{"token": `)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
}

// ============================================================================
// 설정값 유효성 검증
// ============================================================================

// TestLoadWithFile_Validation 각 설정 항목의 유효성 검증 규칙을 테이블 기반으로 검증합니다.
func TestLoadWithFile_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "토큰 누락",
			content: `{}`,
			wantErr: true,
		},
		{
			name:    "유효한 프록시 주소",
			content: `{"token": "tk", "proxy": "127.0.0.1:1080"}`,
			wantErr: false,
		},
		{
			name:    "자격 증명이 포함된 프록시 주소",
			content: `{"token": "tk", "proxy": "user:pass@proxy.example.com:1080"}`,
			wantErr: false,
		},
		{
			name:    "포트가 없는 프록시 주소",
			content: `{"token": "tk", "proxy": "127.0.0.1"}`,
			wantErr: true,
		},
		{
			name:    "유효하지 않은 로케일",
			content: `{"token": "tk", "secondary_locale": "!!"}`,
			wantErr: true,
		},
		{
			name:    "지역 변형이 포함된 로케일",
			content: `{"token": "tk", "secondary_locale": "zh-TW"}`,
			wantErr: false,
		},
		{
			name:    "유효하지 않은 재시도 대기 시간",
			content: `{"token": "tk", "http_retry": {"min_retry_delay": "abc"}}`,
			wantErr: true,
		},
		{
			name:    "최소 대기 시간이 최대 대기 시간보다 큼",
			content: `{"token": "tk", "http_retry": {"min_retry_delay": "1m", "max_retry_delay": "10s"}}`,
			wantErr: true,
		},
		{
			name:    "재시도 횟수 상한 초과",
			content: `{"token": "tk", "http_retry": {"max_retries": 100}}`,
			wantErr: true,
		},
		{
			name:    "유효하지 않은 다운로드 간격",
			content: `{"token": "tk", "previews": {"pacing": "fast"}}`,
			wantErr: true,
		},
		{
			name:    "빈 출력 파일 경로",
			content: `{"token": "tk", "output_file": ""}`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, tc.content)

			_, err := LoadWithFile(path)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestIsValidProxyAddr 프록시 주소 형식 검사 로직을 단위 검증합니다.
func TestIsValidProxyAddr(t *testing.T) {
	t.Parallel()

	assert.True(t, isValidProxyAddr("127.0.0.1:1080"))
	assert.True(t, isValidProxyAddr("proxy.example.com:1080"))
	assert.True(t, isValidProxyAddr("user:pass@proxy.example.com:1080"))
	assert.False(t, isValidProxyAddr("127.0.0.1"))
	assert.False(t, isValidProxyAddr(""))
	assert.False(t, isValidProxyAddr("user:pass@"))
}
