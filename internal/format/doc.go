// Package format re-renders a parsed song in canonical source form.
//
// Назначение: стабильный вывод для `songsheet fmt`; повторное форматирование
// результата ничего не меняет.
// Не делает: перенос длинных строк, IO.
// Зависимости: internal/ast, internal/source.
package format
