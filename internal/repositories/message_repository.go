package repositories

import (
	"github.com/Qarib2004/reddit-sub000/internal/models"

	"gorm.io/gorm"
)

// MessageRepository is the durable message log. Messages are append-only;
// the single mutation allowed is the one-way read flip in MarkRead.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{
		db: db,
	}
}

func (mr *MessageRepository) SaveMessage(message *models.Message) (*models.Message, []error) {
	var errors []error
	if err := mr.db.Create(message).Error; err != nil {
		errors = append(errors, err)
		return nil, errors
	}
	return message, nil
}

// GetConversation returns every message exchanged between the two users in
// either direction, oldest first. Ties on created_at fall back to insertion
// order via the id column.
func (mr *MessageRepository) GetConversation(userId, peerId uint) ([]models.Message, []error) {
	var errors []error
	var messages []models.Message

	err := mr.db.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userId, peerId, peerId, userId).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		errors = append(errors, err)
		return nil, errors
	}

	return messages, nil
}

// UnreadCounts groups the recipient's unread messages by sender. This is a
// read-time aggregation over the log, not a maintained counter.
func (mr *MessageRepository) UnreadCounts(recipientId uint) (map[uint]int64, error) {
	rows, err := mr.db.
		Model(&models.Message{}).
		Select("sender_id, COUNT(*) AS total").
		Where("recipient_id = ? AND read = ?", recipientId, false).
		Group("sender_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uint]int64)
	for rows.Next() {
		var senderId uint
		var total int64
		if err := rows.Scan(&senderId, &total); err != nil {
			return nil, err
		}
		counts[senderId] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// MarkRead flips every unread message from sender to recipient in one bulk
// update. Re-applying it when nothing is unread affects zero rows and is
// not an error.
func (mr *MessageRepository) MarkRead(senderId, recipientId uint) (int64, error) {
	result := mr.db.
		Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND read = ?", senderId, recipientId, false).
		Update("read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
