package service

import "lingua_edu_backend/internal/model"

// progressViewerRoles 可查看任意学习者进度的角色
var progressViewerRoles = map[model.UserRole]bool{
	model.Admin:          true,
	model.Teacher:        true,
	model.ContentCreator: true,
	model.Parent:         true,
}

// CanViewProgress 本人或具备查看角色即可
func CanViewProgress(callerRole model.UserRole, callerID, learnerID uint) bool {
	if callerID != 0 && callerID == learnerID {
		return true
	}
	return progressViewerRoles[callerRole]
}
