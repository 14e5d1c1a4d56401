package service

import "user-access-api/internal/domain"

// CanModifyUser 更新/删除共用的归属+角色判定，按顺序短路：
//  1. 未登录                         -> ErrAuthenticationRequired
//  2. 既不是本人也不是 admin          -> ErrNotOwnerOrAdmin
//  3. 改 role 但不是 admin（含改自己） -> ErrRoleChangeNeedAdmin
//
// 删除传零值 changes 即可。
func CanModifyUser(actor *domain.Identity, targetID uint, changes domain.UserChanges) error {
	if actor == nil {
		return domain.ErrAuthenticationRequired
	}
	if actor.ID != targetID && !actor.IsAdmin() {
		return domain.ErrNotOwnerOrAdmin
	}
	if changes.ChangesRole() && !actor.IsAdmin() {
		return domain.ErrRoleChangeNeedAdmin
	}
	return nil
}
