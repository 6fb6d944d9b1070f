package db

import (
	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
)

// UserFixtures provides sample account data for seeding dev environments.
// The hashes are bcrypt digests of "changeme".
var UserFixtures = []map[string]interface{}{
	{
		"email":         "editor@techflow.co.kr",
		"password_hash": "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	},
	{
		"email":         "admin@techflow.co.kr",
		"password_hash": "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	},
}

// AdminSettingFixtures marks the given user IDs as admins.
func AdminSettingFixtures(userIDs []string) []map[string]interface{} {
	fixtures := make([]map[string]interface{}, 0, len(userIDs))
	for _, id := range userIDs {
		fixtures = append(fixtures, map[string]interface{}{
			"user_id":  id,
			"is_admin": true,
		})
	}
	return fixtures
}

// PostFixtures provides sample post data for seeding.
// author_id fields must reference already-created users.
func PostFixtures(authorIDs []string) []map[string]interface{} {
	if len(authorIDs) == 0 {
		return []map[string]interface{}{}
	}

	second := authorIDs[0]
	if len(authorIDs) > 1 {
		second = authorIDs[1]
	}

	return []map[string]interface{}{
		{
			"title":        "TechFlow 2.0 출시 안내",
			"content":      "차세대 플랫폼 TechFlow 2.0이 정식 출시되었습니다...",
			"category":     "product",
			"author_id":    authorIDs[0],
			"is_published": true,
		},
		{
			"title":        "정기 시스템 점검 안내",
			"content":      "보다 안정적인 서비스를 위해 정기 점검을 진행합니다...",
			"category":     "maintenance",
			"author_id":    second,
			"is_published": true,
		},
		{
			"title":        "고객 성공 사례: 제조업 스마트팩토리 전환",
			"content":      "국내 제조 기업의 디지털 전환 프로젝트를 소개합니다...",
			"category":     "case_study",
			"author_id":    authorIDs[0],
			"is_published": true,
		},
		{
			"title":     "초안: 하반기 로드맵",
			"content":   "아직 공개 전인 하반기 제품 로드맵 초안입니다...",
			"category":  "update",
			"author_id": authorIDs[0],
			// is_published omitted, stays a draft
		},
	}
}

// AllSchemas returns all entity schemas for migration
func AllSchemas() []*interfaces.Schema {
	return []*interfaces.Schema{
		entities.UserSchema,
		entities.AdminSettingSchema,
		entities.PostSchema,
		entities.ContactMessageSchema,
	}
}
