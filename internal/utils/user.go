package utils

import (
	"math/rand"
	"time"
)

var avatarEmojis = []string{"🌱", "🌿", "🍀", "🌻", "🌳", "🦉", "🐢", "🦊", "🐝", "🐧", "🏃", "🧘"}

// GetDaysSinceJoined counts whole days since createdAt.
func GetDaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}

// GetRandomEmoji picks a default avatar for a new account.
func GetRandomEmoji() string {
	return avatarEmojis[rand.Intn(len(avatarEmojis))]
}

// GetCommonEmojis is the avatar picker on the profile form.
func GetCommonEmojis() []string {
	return []string{
		"🌱", "🌿", "🍀", "🌻", "🌳", "🌵", "🌸", "🍁",
		"🦉", "🐢", "🦊", "🐝", "🐧", "🐼", "🐯", "🐨",
		"😀", "😊", "😎", "🤓", "🧐", "🤩", "😇", "🥳",
		"🏃", "🧘", "🚴", "🏊", "🧗", "🏋️", "📚", "✍️",
		"⭐", "✨", "🔥", "💡", "🚀", "🎯", "💎", "🏆",
	}
}
