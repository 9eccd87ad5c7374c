package apperrors

import "net/http"

// Predefined domain errors. Messages are user-facing and localized for the mini-program.

// --- auth / user ---

var ErrWechatAuthFailed = New(CodeWechatAuthFailed, "auth", "微信授权失败", http.StatusBadRequest)

var ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "账号或密码错误", http.StatusUnauthorized)

var ErrInvalidToken = New(CodeInvalidToken, "auth", "无效的认证凭证", http.StatusUnauthorized)

var ErrAdminRequired = New(CodeForbidden, "auth", "权限不足，仅管理员可访问", http.StatusForbidden)

var ErrUserNotFound = New(CodeUserNotFound, "user", "用户不存在", http.StatusNotFound)

// --- tutors ---

var ErrTutorNotFound = New(CodeTutorNotFound, "tutor", "导师不存在", http.StatusNotFound)

var ErrTutorAlreadyDeleted = New(CodeAlreadyDeleted, "tutor", "导师信息已被删除", http.StatusBadRequest)

var ErrTutorNotDeleted = New(CodeNotDeleted, "tutor", "导师信息未被删除", http.StatusBadRequest)

var ErrTooManyIDs = New(CodeTooManyIDs, "tutor", "最多支持100个导师ID", http.StatusBadRequest)

var ErrNoValidFields = New(CodeNoValidFields, "tutor", "没有有效的更新字段", http.StatusBadRequest)

var ErrEmptyBatch = New(CodeInvalidRequest, "tutor", "导师ID列表和更新字段不能为空", http.StatusBadRequest)

var ErrNoExportData = New(CodeNoData, "export", "没有符合条件的导师数据", http.StatusNotFound)

// --- favorites ---

var ErrNotCollected = New(CodeNotCollected, "favorite", "该导师未收藏", http.StatusNotFound)

// --- bookings ---

var ErrVIPRequired = New(CodeVIPRequired, "booking", "只有VIP用户才能预约咨询", http.StatusForbidden)

var ErrVIPExpired = New(CodeVIPExpired, "booking", "VIP会员已过期", http.StatusForbidden)

var ErrTimeConflict = New(CodeTimeConflict, "booking", "该时间段已被预约", http.StatusBadRequest)

var ErrDuplicateBooking = New(CodeDuplicateBooking, "booking", "您已经预约过该时间段", http.StatusBadRequest)

var ErrBookingNotFound = New(CodeBookingNotFound, "booking", "预约记录不存在", http.StatusNotFound)

var ErrCannotCancel = New(CodeCannotCancel, "booking", "只能取消待确认的预约", http.StatusBadRequest)

// --- projects ---

var ErrInvalidProjectType = New(CodeInvalidType, "project", "无效的项目类型", http.StatusBadRequest)

var ErrProjectNotFound = New(CodeProjectNotFound, "project", "项目不存在", http.StatusNotFound)

var ErrAlreadyApplied = New(CodeAlreadyApplied, "project", "您已经申请过该项目", http.StatusBadRequest)

// --- matching ---

var ErrInvalidKeywords = New(CodeInvalidKeywords, "match", "请输入有效的研究兴趣关键词", http.StatusBadRequest)

// ErrHistoryNotFound covers both a missing id and an id owned by someone else.
var ErrHistoryNotFound = New(CodeHistoryNotFound, "match", "匹配历史不存在", http.StatusNotFound)
