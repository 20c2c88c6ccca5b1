package service

import (
	customErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
)

const (
	RuleAdminProtected = "Admin cannot be modified by the user."
	RuleForbidden      = "Forbidden."
)

// CanModify reports whether actor may mutate target's record.
//
//	actor=user, target=admin           -> deny, even for the same id
//	other id, actor not admin          -> deny
//	other id, actor admin, target admin -> deny
//	everything else                    -> allow
func CanModify(actor, target model.User) bool {
	return denyRule(actor, target) == ""
}

// Authorize is CanModify with the violated rule attached to the error.
func Authorize(actor, target model.User) error {
	if rule := denyRule(actor, target); rule != "" {
		return customErrors.NewForbidden(rule)
	}
	return nil
}

func denyRule(actor, target model.User) string {
	if target.Role == model.RoleAdmin && actor.Role == model.RoleUser {
		return RuleAdminProtected
	}
	if target.ID != actor.ID {
		if actor.Role != model.RoleAdmin {
			return RuleForbidden
		}
		if target.Role == model.RoleAdmin {
			return RuleForbidden
		}
	}
	return ""
}
