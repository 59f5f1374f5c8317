package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOptionsValidate Options 검증 로직이 잘못된 설정을 거부하는지 검증합니다.
func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name:    "정상 설정",
			opts:    Options{Name: "test-app"},
			wantErr: false,
		},
		{
			name:    "Name 누락",
			opts:    Options{},
			wantErr: true,
		},
		{
			name:    "음수 MaxAge",
			opts:    Options{Name: "test-app", MaxAge: -1},
			wantErr: true,
		},
		{
			name:    "음수 MaxSizeMB",
			opts:    Options{Name: "test-app", MaxSizeMB: -1},
			wantErr: true,
		},
		{
			name:    "음수 MaxBackups",
			opts:    Options{Name: "test-app", MaxBackups: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestMaskSensitiveData 토큰 길이별 마스킹 규칙을 검증합니다.
func TestMaskSensitiveData(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", MaskSensitiveData(""))
	assert.Equal(t, "***", MaskSensitiveData("abc"))
	assert.Equal(t, "abcd***", MaskSensitiveData("abcdefgh"))
	assert.Equal(t, "abcd***wxyz", MaskSensitiveData("abcdefghijklmnopqrstuvwxyz"))
}

// TestHookRouting Hook이 로그 레벨에 따라 메인/Critical 채널로 올바르게 분배하는지 검증합니다.
func TestHookRouting(t *testing.T) {
	t.Parallel()

	var mainBuf, criticalBuf bytes.Buffer
	h := &hook{
		mainWriter:     &mainBuf,
		criticalWriter: &criticalBuf,
		formatter:      &logrus.TextFormatter{DisableTimestamp: true},
	}

	logger := logrus.New()

	// Info 레벨은 메인 채널에만 기록되어야 한다
	infoEntry := logrus.NewEntry(logger)
	infoEntry.Level = logrus.InfoLevel
	infoEntry.Message = "catalog fetched"
	require.NoError(t, h.Fire(infoEntry))

	assert.Contains(t, mainBuf.String(), "catalog fetched")
	assert.Empty(t, criticalBuf.String())

	// Error 레벨은 메인과 Critical 양쪽에 기록되어야 한다
	errEntry := logrus.NewEntry(logger)
	errEntry.Level = logrus.ErrorLevel
	errEntry.Message = "fetch failed"
	require.NoError(t, h.Fire(errEntry))

	assert.Contains(t, mainBuf.String(), "fetch failed")
	assert.Contains(t, criticalBuf.String(), "fetch failed")
}

// TestHookClosed 종료된 Hook이 로그 기록 요청을 무시하는지 검증합니다.
func TestHookClosed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := &hook{
		mainWriter: &buf,
		formatter:  &logrus.TextFormatter{DisableTimestamp: true},
	}
	require.NoError(t, h.Close())

	entry := logrus.NewEntry(logrus.New())
	entry.Level = logrus.InfoLevel
	entry.Message = "after close"
	require.NoError(t, h.Fire(entry))

	assert.Empty(t, buf.String())
}
