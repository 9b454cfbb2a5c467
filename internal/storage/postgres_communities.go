package storage

import (
	"encoding/json"
	"time"

	"complaintdesk/backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CommunityRow is the relational copy of one community, kept next to the
// kv_entries document for SQL reporting over members.
type CommunityRow struct {
	ID              string         `gorm:"primaryKey"`
	Position        int            `gorm:"not null"`
	Name            string         `gorm:"type:text;not null"`
	Description     string         `gorm:"type:text"`
	Location        string         `gorm:"type:text"`
	AdminID         string         `gorm:"type:text;index"`
	Members         pq.StringArray `gorm:"type:text[];not null"`
	CreatedAt       time.Time
	InviteCode      string `gorm:"type:text;index"`
	TotalComplaints int
}

func (CommunityRow) TableName() string {
	return "communities"
}

// CommunityRows decodes a persisted communities collection into table rows,
// preserving collection order in Position.
func CommunityRows(data []byte) ([]CommunityRow, error) {
	var communities []models.Community
	if err := json.Unmarshal(data, &communities); err != nil {
		return nil, err
	}

	rows := make([]CommunityRow, 0, len(communities))
	for i, c := range communities {
		members := c.Members
		if members == nil {
			members = pq.StringArray{}
		}
		rows = append(rows, CommunityRow{
			ID:              c.ID,
			Position:        i,
			Name:            c.Name,
			Description:     c.Description,
			Location:        c.Location,
			AdminID:         c.AdminID,
			Members:         members,
			CreatedAt:       c.CreatedAt,
			InviteCode:      c.InviteCode,
			TotalComplaints: c.TotalComplaints,
		})
	}
	return rows, nil
}

// replaceCommunities rewrites the communities table to match data.
func replaceCommunities(tx *gorm.DB, data []byte) error {
	rows, err := CommunityRows(data)
	if err != nil {
		return err
	}
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CommunityRow{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
