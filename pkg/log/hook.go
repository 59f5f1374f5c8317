package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// hook 로그 레벨에 따라 단일 로그 이벤트를 여러 출력 채널로 분배하는 Hook 구현체입니다.
//
// 핵심 역할:
//   - 로그 분기: 모든 레벨은 메인 파일로, Error 이상은 추가로 Critical 파일로 기록합니다.
//   - 콘솔 출력: 활성화된 경우 모든 레벨을 표준 출력으로도 내보냅니다.
type hook struct {
	mainWriter     io.Writer // 전체 로그를 기록하는 메인 채널
	criticalWriter io.Writer // 치명적 장애(ERROR / FATAL / PANIC)를 별도로 격리하여 보존하는 채널
	consoleWriter  io.Writer // 실시간 확인을 위한 표준 출력(Stdout)

	formatter Formatter

	mu sync.RWMutex // 로그 기록(Read Lock)과 종료 처리(Write Lock) 간의 동시성 제어

	closed bool // Hook의 종료 여부. true일 경우 모든 로그 기록 요청을 거부
}

// Levels 이 Hook이 수신할 로그 레벨의 집합을 반환합니다.
func (h *hook) Levels() []Level {
	return AllLevels
}

// Fire 발생한 로그 이벤트를 수신하여 설정된 Writer들로 분배 및 기록합니다.
func (h *hook) Fire(entry *Entry) error {
	// Read Lock을 획득하여 동시 로깅을 허용하며, 작업 수행 중 Hook이 종료되지 않도록 보호합니다.
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	// 로그 포맷팅 (한 번만 수행하여 재사용)
	msg, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	var firstErr error

	// 콘솔 쓰기 실패는 전체 로깅 시스템의 가용성에 영향을 주지 않도록 에러를 전파하지 않습니다.
	if h.consoleWriter != nil {
		if _, err := h.consoleWriter.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] 표준 출력(Console) 쓰기 실패: %v\n", err)
		}
	}

	// Critical 채널 (Error 이상)
	// 기록 실패는 데이터 유실을 의미하지만, 메인 로그 기록은 반드시 수행되어야 하므로 에러를 유예합니다.
	if entry.Level <= ErrorLevel && h.criticalWriter != nil {
		if _, err := h.criticalWriter.Write(msg); err != nil {
			firstErr = err
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] Critical 로그 파일 쓰기 실패: %v\n", err)
		}
	}

	// 메인 채널 (전체 레벨)
	if h.mainWriter != nil {
		if _, err := h.mainWriter.Write(msg); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] Main 로그 파일 쓰기 실패: %v\n", err)
		}
	}

	return firstErr
}

// Close Hook의 상태를 '종료(Closed)'로 전환하여 더 이상의 로그 기록을 차단합니다.
func (h *hook) Close() error {
	// Write Lock을 획득하여, 현재 실행 중인 모든 로깅 작업(Read Lock)이 완료될 때까지 대기합니다.
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	return nil
}
