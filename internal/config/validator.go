package config

import (
	"fmt"
	"net"
	"reflect"
	"strings"
	"sync"

	apperrors "github.com/darkkaiser/discord-shop-fetcher/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator 커스텀 검증 규칙이 등록된 validator 인스턴스를 반환합니다.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// 에러 메시지에 Go 필드명 대신 JSON 태그명이 노출되도록 설정
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// proxy_addr: SOCKS5 프록시 주소 형식 검증 (host:port 또는 user:pass@host:port)
		_ = validate.RegisterValidation("proxy_addr", func(fl validator.FieldLevel) bool {
			return isValidProxyAddr(fl.Field().String())
		})

		// locale_tag: BCP 47 언어 태그 검증 (예: ru, ja, pt-BR)
		_ = validate.RegisterValidation("locale_tag", func(fl validator.FieldLevel) bool {
			_, err := language.Parse(fl.Field().String())
			return err == nil
		})
	})

	return validate
}

// isValidProxyAddr 프록시 주소 문자열의 형식을 검증합니다.
// 자격 증명이 포함된 경우(user:pass@host:port) 호스트 부분만 분리하여 검사합니다.
func isValidProxyAddr(addr string) bool {
	if idx := strings.LastIndex(addr, "@"); idx != -1 {
		addr = addr[idx+1:]
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}

	return host != "" && port != ""
}

// validateStruct 구조체의 validate 태그 기반 검증을 수행하고,
// 실패 시 어떤 항목이 왜 실패했는지 식별 가능한 에러를 반환합니다.
func validateStruct(s interface{}, structName string) error {
	if err := getValidator().Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if apperrors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldError := validationErrors[0]
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s 설정 검증에 실패했습니다: '%s' 항목이 '%s' 규칙을 만족하지 않습니다", structName, fieldError.Field(), fieldError.Tag()))
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 설정 검증에 실패했습니다", structName))
	}

	return nil
}
