// Package generator translates the declarative academic structure held in
// a snapshot into the dense, ordered list of CSP variables the solver
// places, enforcing fail-fast feasibility as it goes (spec §4.2).
package generator

import (
	"fmt"

	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/snapshot"
	"github.com/noah-isme/timetable-solver/internal/solvererr"
)

// Generate builds the ordered []domain.SessionVariable for snap: for each
// course in snapshot order, for each group of that course's level in
// group-number order, one LECTURE, then for each section of that group in
// section-number order, its LAB then its TUTORIAL. Var-ids are assigned
// densely in that order, which is also the fixed backtracking order (spec
// §4.2, §4.5).
//
// Generation aborts on the first variable whose required room type has no
// room with sufficient capacity, returning a *solvererr.Infeasible with
// Kind CapacityShortfall, per the rationale in spec §4.2: capacity is
// variable-local and never improves during search.
func Generate(snap *snapshot.Snapshot) ([]domain.SessionVariable, error) {
	var variables []domain.SessionVariable
	varID := 0

	for _, course := range snap.Courses {
		groups := snap.GroupsForLevel(course.Level)
		if len(groups) == 0 {
			return nil, solvererr.New(solvererr.InvalidInput,
				fmt.Sprintf("course %s (level %d) has zero groups", course.Code, course.Level),
				map[string]any{"courseId": course.ID, "levelId": course.Level})
		}

		for _, group := range groups {
			lecture := domain.SessionVariable{
				VarID:          varID,
				CourseID:       course.ID,
				CourseCode:     course.Code,
				CourseName:     course.Name,
				SessionType:    domain.Lecture,
				DurationBlocks: 2,
				StudentCount:   group.NumStudents,
				RequiredRoom:   domain.LectureRoomType(group.NumStudents),
				LevelID:        group.LevelID,
				GroupID:        group.ID,
				GroupNumber:    group.GroupNumber,
			}
			if !snap.HasCapacity(lecture.RequiredRoom, lecture.StudentCount) {
				return nil, capacityShortfall(lecture)
			}
			variables = append(variables, lecture)
			varID++

			sections := snap.SectionsForGroup(group.ID)
			if len(sections) == 0 {
				return nil, solvererr.New(solvererr.InvalidInput,
					fmt.Sprintf("group %d (level %d) belongs to a level with no matching sections", group.GroupNumber, group.LevelID),
					map[string]any{"groupId": group.ID, "levelId": group.LevelID})
			}

			for _, section := range sections {
				lab := domain.SessionVariable{
					VarID:          varID,
					CourseID:       course.ID,
					CourseCode:     course.Code,
					CourseName:     course.Name,
					SessionType:    domain.Lab,
					DurationBlocks: 2,
					StudentCount:   section.NumStudents,
					RequiredRoom:   domain.RoomLab,
					LevelID:        section.LevelID,
					GroupID:        group.ID,
					GroupNumber:    group.GroupNumber,
					SectionID:      section.ID,
					SectionNumber:  section.SectionNumber,
					HasSection:     true,
				}
				if !snap.HasCapacity(lab.RequiredRoom, lab.StudentCount) {
					return nil, capacityShortfall(lab)
				}
				variables = append(variables, lab)
				varID++

				tutorial := domain.SessionVariable{
					VarID:          varID,
					CourseID:       course.ID,
					CourseCode:     course.Code,
					CourseName:     course.Name,
					SessionType:    domain.Tutorial,
					DurationBlocks: domain.TutorialDuration(section.NumStudents),
					StudentCount:   section.NumStudents,
					RequiredRoom:   domain.Classroom,
					LevelID:        section.LevelID,
					GroupID:        group.ID,
					GroupNumber:    group.GroupNumber,
					SectionID:      section.ID,
					SectionNumber:  section.SectionNumber,
					HasSection:     true,
				}
				if !snap.HasCapacity(tutorial.RequiredRoom, tutorial.StudentCount) {
					return nil, capacityShortfall(tutorial)
				}
				variables = append(variables, tutorial)
				varID++
			}
		}
	}

	return variables, nil
}

func capacityShortfall(v domain.SessionVariable) *solvererr.Infeasible {
	return solvererr.New(solvererr.CapacityShortfall,
		fmt.Sprintf("no %s available for %s with %d students", v.RequiredRoom, v.String(), v.StudentCount),
		map[string]any{
			"variable":     v.String(),
			"sessionType":  string(v.SessionType),
			"studentCount": v.StudentCount,
			"requiredRoom": string(v.RequiredRoom),
		})
}
