// Package storage 병합 결과 JSON 파일의 원자적 저장을 담당합니다.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
)

// tempFilePattern 저장 중 생성되는 임시 파일의 이름 패턴입니다.
const tempFilePattern = "shop-output-*.tmp"

// WriteJSON 값을 JSON으로 직렬화하여 지정된 경로에 원자적으로 저장합니다.
//
// 출력은 사람이 읽기 좋은 들여쓰기를 적용하며, 비 ASCII 문자와 &, <, > 등의
// 문자는 이스케이프하지 않고 그대로 기록합니다.
//
// [저장 전략: 원자적 쓰기]
// 저장 중 시스템 장애가 발생해도 기존 파일이 손상되지 않도록
// "임시 파일 쓰기 → 동기화(fsync) → 원자적 이름 변경(rename)" 순서로 수행합니다.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "결과 데이터의 JSON 직렬화에 실패했습니다")
	}

	return writeAtomic(path, buf.Bytes())
}

// writeAtomic 데이터를 파일에 원자적으로 저장합니다.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.Wrap(err, apperrors.System, fmt.Sprintf("저장 디렉토리 생성에 실패했습니다: '%s'", dir))
	}

	// 같은 디렉토리 내에 생성해야 rename이 원자적으로 동작합니다.
	tmpFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "임시 파일 생성에 실패했습니다")
	}
	tmpPath := tmpFile.Name()

	// 함수 종료 시 임시 파일을 확실하게 정리합니다.
	// Windows에서는 열린 파일을 삭제할 수 없으므로 Close가 Remove보다 먼저 실행되어야 합니다.
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return apperrors.Wrap(err, apperrors.System, "임시 파일 쓰기에 실패했습니다")
	}

	// 운영체제 버퍼 캐시에만 있는 상태에서 전원이 차단되는 것을 방지합니다.
	if err := tmpFile.Sync(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "임시 파일 동기화에 실패했습니다")
	}

	// Windows에서는 파일이 열려 있으면 rename이 실패하므로 반드시 닫아야 합니다.
	if err := tmpFile.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "임시 파일 닫기에 실패했습니다")
	}

	if err := renameWithRetry(tmpPath, path); err != nil {
		return apperrors.Wrap(err, apperrors.System, fmt.Sprintf("결과 파일 이름 변경에 실패했습니다: '%s'", path))
	}

	// 파일명 변경 사항을 디스크에 확실히 기록하기 위해 부모 디렉토리를 동기화합니다.
	// 실패해도 치명적이지 않으므로 에러를 무시합니다.
	if dirFile, err := os.Open(dir); err == nil {
		_ = dirFile.Sync()
		dirFile.Close()
	}

	return nil
}

// renameWithRetry 파일 이름 변경을 재시도 로직과 함께 수행합니다.
// Windows에서 백신 등 외부 프로세스가 파일을 일시적으로 잠그는 경우를 우회하기 위한 것입니다.
func renameWithRetry(oldPath, newPath string) error {
	const maxRetries = 5
	const retryDelay = 10 * time.Millisecond

	var lastErr error
	for range maxRetries {
		err := os.Rename(oldPath, newPath)
		if err == nil {
			return nil
		}

		lastErr = err
		time.Sleep(retryDelay)
	}

	return lastErr
}
