package domain

// MenuNode is one entry of the navigation tree resolved for a user and site.
// Two levels are used in practice: group menus and their item children.
type MenuNode struct {
	MenuID   string     `json:"menuId" bson:"menuId"`
	MenuName string     `json:"menuName" bson:"menuName"`
	MenuPath string     `json:"menuPath" bson:"menuPath"`
	Icon     string     `json:"icon" bson:"icon"`
	Order    int        `json:"order" bson:"order"`
	ParentID string     `json:"-" bson:"parentId"`
	Children []MenuNode `json:"children,omitempty" bson:"-"`
}

// SiteUseFlag marks a menu as available in one site.
type SiteUseFlag struct {
	SiteID   string `bson:"siteId"`
	IsActive bool   `bson:"isActive"`
}
