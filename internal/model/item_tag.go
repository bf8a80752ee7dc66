package model

type ItemTag struct {
	ItemID uint64 `gorm:"column:item_id;not null;primaryKey"`
	TagID  uint64 `gorm:"column:tag_id;not null;primaryKey;index:idx_item_tags_tag_id"`
}

func (ItemTag) TableName() string {
	return "item_tags"
}
