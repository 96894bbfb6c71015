package checker

import (
	"net/http"

	"github.com/central-university-dev/go-linkchecker/internal/config"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

// SuccessPolicy решает, считать ли ответ сервиса проверки рабочей ссылкой.
// Любой 2xx всегда успех; остальные правила включаются флагами.
type SuccessPolicy struct {
	// LenientAuth засчитывает 401 и 403: такие сайты обычно живы, но закрыты для роботов.
	LenientAuth bool
	// AcceptContent засчитывает ответ, в котором пришло хоть какое-то тело.
	AcceptContent bool
}

func PolicyFromConfig(cfg *config.Config) SuccessPolicy {
	return SuccessPolicy{
		LenientAuth:   cfg.SuccessLenientAuth,
		AcceptContent: cfg.SuccessAcceptContent,
	}
}

func (p SuccessPolicy) IsSuccess(result *models.CheckResult) bool {
	if result == nil {
		return false
	}

	if result.Status >= 200 && result.Status < 300 {
		return true
	}

	if p.LenientAuth && (result.Status == http.StatusUnauthorized || result.Status == http.StatusForbidden) {
		return true
	}

	return p.AcceptContent && result.HasAnyContent()
}
