package intelligence

const goalValidationSystemPrompt = `You are a professional productivity coach. Today is %s. Never suggest past dates.
In "refined_versions" the "goal" field must hold the actual refined goal statement, not a description or placeholder.
Be precise, constructive and professional. Always return valid JSON.`

const goalValidationPrompt = `Analyze this goal using SMART criteria.

CURRENT DATE: %[1]s. All dates must be after %[1]s.

USER'S GOAL: %[2]q

SMART EVALUATION:
- Specific: clear, concrete outcome?
- Measurable: quantifiable metrics or checkpoints?
- Achievable: realistic for the timeframe?
- Relevant: aligned with growth and development?
- Time-bound: has a deadline after %[1]s?

Provide 3 progressively refined versions of the goal:
- Version 1 keeps the user's wording and adds missing SMART elements
- Version 2 restructures for clarity and measurability
- Version 3 is a professional statement with milestones and metrics

Return ONLY JSON in this shape:
{
  "is_valid": true,
  "validation_details": {"specific": true, "measurable": true, "achievable": true, "relevant": true, "time_bound": true},
  "feedback": "what is strong and what needs improvement",
  "suggestions": ["actionable suggestion"],
  "refined_versions": [{"goal": "refined goal statement", "improvement": "what changed", "why_better": "why it helps"}]
}`

const suggestTasksSystemPrompt = `You are an expert task planner with deep domain knowledge across subjects. Today is %s.
Never suggest past dates. Always return valid JSON.`

const suggestTasksPrompt = `Create a task breakdown for this goal. Return ONLY valid JSON.

CURRENT DATE: %s
GOAL: %q

Generate 6-10 tasks:
- high-impact tasks first (80/20 rule)
- prerequisites before the work that needs them
- a mix of energy levels
- 1-4h per task, 15-20h in total

CONSTRAINTS:
- category: "research" | "coding" | "admin" | "networking"
- artifact: "notes" | "code" | "article"
- energy_level: "high" | "medium" | "low"
- priority: integer 1-10
- time_hours: 0.5-4.0

FORMAT:
{
  "suggested_tasks": [
    {"title": "Action-oriented title", "category": "research", "time_hours": 2.0, "goal": "Brief purpose",
     "artifact": "notes", "priority": 9, "energy_level": "high", "batch_group": "Group name", "dependencies": []}
  ],
  "scheduling_strategy": "brief advice",
  "estimated_total_hours": 18.0,
  "energy_allocation": {"high_energy_hours": 8.0, "medium_energy_hours": 7.0, "low_energy_hours": 3.0},
  "batching_recommendations": "brief advice",
  "weekly_breakdown": "week-by-week summary"
}`

const scheduleSystemPrompt = `You are an expert scheduler. Always return valid JSON.`

const schedulePrompt = `Create an optimal weekly schedule for these tasks.

TASKS:
%s

TASK GROUPS (similar tasks):
%s

CONSTRAINTS:
- Week starts: %s
- Daily work hours: %d:00 to %d:00
- REST PERIOD: 00:00 to 06:00, no tasks allowed
- Peak productivity hours: %s
- Take %d min breaks every %g hours

PRINCIPLES:
1. Never schedule anything between midnight and 06:00
2. Keep similar tasks together to minimize context switching
3. Put high-priority and demanding tasks in peak hours
4. Leave buffer time for delays
5. Balance the workload across the week

Return ONLY JSON:
{
  "schedule": [
    {"task_id": 1, "day_of_week": "Monday", "start_hour": 9, "start_minute": 0, "duration_hours": 2.0, "reason": "why this slot"}
  ],
  "scheduling_notes": "brief strategy"
}
Every task must appear. Time slots must not overlap.`

const recommendSystemPrompt = `You are a productivity assistant. Output only a JSON array.`

const recommendPrompt = `Analyze these tasks and give 3 specific, actionable recommendations that optimize the weekly schedule and reduce cognitive tax:

Tasks:
%s

Respond with ONLY a JSON array:
[
  {"suggestion": "specific recommendation", "reason": "why this helps", "priority": 8}
]

Focus on context switching between task types, time blocks for deep work and energy across the week.`

const groupingSystemPrompt = `You are a task organization expert. Always return valid JSON.`

const groupingPrompt = `Group these tasks by similarity of content, purpose and context.

Tasks:
%s

Consider shared subject matter, shared skills or tools, sequential work and complementary activities.

Return ONLY JSON:
{"groups": [{"name": "Group Name", "description": "why these belong together", "task_ids": [1, 2]}]}

Rules: every task appears in exactly one group; aim for 2-5 groups.`

const insightsPrompt = `Analyze these productivity patterns and give 3-5 key insights and recommendations.

STATISTICS:
%s

SAMPLE TASKS:
%s

Cover workload balance, scheduling optimizations, risk areas such as overcommitment and
actionable next steps. Keep each insight to 2-3 sentences.`

const querySystemPrompt = `You translate questions about a task database into JSON query plans. Always return valid JSON.`

const queryPrompt = `Collections:
- tasks: id (int), title, category (research|coding|admin|networking), time_hours (float),
  goal, artifact (article|notes|code), priority (1-10, higher is more important),
  weekly_goal_id (int), review.focus_rate (1-10), review.done_on_time (yes|no),
  calendar_scheduling.scheduled (bool)
- weekly_goals: id, week_number (1-53), goal, task_ids (array of int)

Question: %q

Return ONLY JSON:
{
  "collection": "tasks",
  "operation": "count" | "find" | "sum" | "avg",
  "field": "time_hours",
  "filter": [{"field": "category", "op": "eq", "value": "coding"}],
  "sort": [{"field": "priority", "desc": true}],
  "limit": 10,
  "explanation": "what the query does"
}
Operators: eq, gt, gte, lt, lte, in (value is a list). "field" is required for sum and avg.`

const queryAnswerPrompt = `Question: %s

Query executed: %s

Results:
%s

Answer the question from these results in 2-3 sentences. Be specific with numbers.
If there are no results, say that nothing matched.`
