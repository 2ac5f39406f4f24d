// Package roles описывает закрытое перечисление ролей пользователей
// и правила доступа на их основе.
//
// Роли упорядочены по уровню возможностей: subscriber < editor < admin.
// Проверки доступа работают как "пол": роль проходит проверку, если её
// уровень не ниже требуемого. Добавление новой роли сводится к одному
// объявлению в levels.
package roles

import "fmt"

// Role роль пользователя в системе.
type Role string

const (
	// Subscriber — читатель, доступ только к опубликованному контенту.
	Subscriber Role = "subscriber"
	// Editor — редактор, управляет статьями и выпусками.
	Editor Role = "editor"
	// Admin — администратор, полный доступ.
	Admin Role = "admin"
)

// levels задаёт полный порядок возможностей ролей.
var levels = map[Role]int{
	Subscriber: 1,
	Editor:     2,
	Admin:      3,
}

// Parse проверяет строку роли и возвращает Role из закрытого перечисления.
func Parse(s string) (Role, error) {
	const op = "roles.Parse"
	r := Role(s)
	if _, ok := levels[r]; !ok {
		return "", fmt.Errorf("%s: unknown role %q", op, s)
	}
	return r, nil
}

// Valid сообщает, входит ли роль в закрытое перечисление.
func (r Role) Valid() bool {
	_, ok := levels[r]
	return ok
}

// Level возвращает уровень возможностей роли, 0 для неизвестной роли.
func (r Role) Level() int {
	return levels[r]
}

// AtLeast проверка-"пол": роль проходит, если её уровень не ниже min.
// Так subscriber-пол пропускает и редакторов, и администраторов —
// это намеренная inclusive-семантика, а не точное совпадение роли.
func (r Role) AtLeast(min Role) bool {
	lvl, ok := levels[r]
	if !ok {
		return false
	}
	return lvl >= levels[min]
}

// CanSeeUnpublished сообщает, видит ли роль черновики и архив.
func (r Role) CanSeeUnpublished() bool {
	return r.AtLeast(Editor)
}

// CanDeleteArticle решает, может ли пользователь удалить статью:
// либо он её автор, либо администратор. Пол Editor сам по себе
// права на удаление чужой статьи не даёт.
func CanDeleteArticle(role Role, userID int64, authorID *int64) bool {
	if role == Admin {
		return true
	}
	return authorID != nil && *authorID == userID
}
