package models

// Read models assembled by explicit joins. None of them is a table.

// PostView is a post with the details of the user who owns its blog.
type PostView struct {
	Post
	Author    string `json:"author"`
	AuthorID  int64  `json:"authorId"`
	AvatarURL string `json:"avatarUrl"`
}

// TimelinePost is a PostView plus the post's comments.
type TimelinePost struct {
	PostView
	Comments []CommentView `json:"comments"`
}

// CommentView is a comment with its author's first name and avatar.
type CommentView struct {
	Comment
	Author    string `json:"author"`
	AuthorID  int64  `json:"authorId"`
	AvatarURL string `json:"avatarUrl"`
}

// FeedPost is what the syndication feed needs for one entry.
type FeedPost struct {
	Post
	Author string `json:"author"`
}

// Feed is every post plus the base URL used to build absolute links.
type Feed struct {
	SiteURL string     `json:"siteUrl"`
	Posts   []FeedPost `json:"posts"`
}

// ProfileView is what the profile page shows about a user.
type ProfileView struct {
	User    User    `json:"user"`
	Profile Profile `json:"profile"`
	Blogs   []Blog  `json:"blogs"`
}
