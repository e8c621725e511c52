package i18n

var catalogs = map[string]map[string]string{
	"en": {
		"quiz.title_required":       "Quiz title is required",
		"quiz.no_questions":         "Add at least one question",
		"question.type_required":    "Question {0}: question type is required",
		"question.prompt_required":  "Question {0}: question text is required",
		"choice.too_few":            "Question {0}: add at least 2 choices",
		"choice.too_many":           "Question {0}: no more than 6 choices are allowed",
		"choice.text_required":      "Question {0}: every choice needs text",
		"choice.correct_required":   "Question {0}: mark exactly one correct choice",
		"pair.too_few":              "Question {0}: add at least one pair",
		"pair.side_required":        "Question {0}: every pair needs both a left and a right value",
		"truefalse.answer_required": "Question {0}: choose whether the statement is true or false",
		"result.summary":            "You answered {0} of {1} questions correctly",
		"quiz.untitled":             "Untitled quiz",
	},
	"id": {
		"quiz.title_required":       "Judul kuis wajib diisi",
		"quiz.no_questions":         "Tambahkan minimal satu pertanyaan",
		"question.type_required":    "Pertanyaan {0}: jenis pertanyaan wajib diisi",
		"question.prompt_required":  "Pertanyaan {0}: teks pertanyaan wajib diisi",
		"choice.too_few":            "Pertanyaan {0}: tambahkan minimal 2 pilihan",
		"choice.too_many":           "Pertanyaan {0}: maksimal 6 pilihan",
		"choice.text_required":      "Pertanyaan {0}: setiap pilihan harus berisi teks",
		"choice.correct_required":   "Pertanyaan {0}: tandai tepat satu pilihan yang benar",
		"pair.too_few":              "Pertanyaan {0}: tambahkan minimal satu pasangan",
		"pair.side_required":        "Pertanyaan {0}: setiap pasangan harus memiliki nilai kiri dan kanan",
		"truefalse.answer_required": "Pertanyaan {0}: pilih apakah pernyataan benar atau salah",
		"result.summary":            "Anda menjawab {0} dari {1} pertanyaan dengan benar",
		"quiz.untitled":             "Kuis tanpa judul",
	},
	"fr": {
		"quiz.title_required":       "Le titre du quiz est obligatoire",
		"quiz.no_questions":         "Ajoutez au moins une question",
		"question.type_required":    "Question {0} : le type de question est obligatoire",
		"question.prompt_required":  "Question {0} : le texte de la question est obligatoire",
		"choice.too_few":            "Question {0} : ajoutez au moins 2 choix",
		"choice.too_many":           "Question {0} : 6 choix au maximum",
		"choice.text_required":      "Question {0} : chaque choix doit avoir un texte",
		"choice.correct_required":   "Question {0} : indiquez exactement un choix correct",
		"pair.too_few":              "Question {0} : ajoutez au moins une paire",
		"pair.side_required":        "Question {0} : chaque paire doit avoir une valeur à gauche et à droite",
		"truefalse.answer_required": "Question {0} : indiquez si l'affirmation est vraie ou fausse",
		"result.summary":            "Vous avez répondu correctement à {0} questions sur {1}",
		"quiz.untitled":             "Quiz sans titre",
	},
}
